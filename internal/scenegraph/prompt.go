package scenegraph

// extractionPrompt is the fixed few-shot prompt for turning a caption into a
// numbered list of object and relationship tuples. The {tuple_delimiter},
// {record_delimiter} and {completion_delimiter} tokens are sent literally;
// the model echoes them back in its output.
const extractionPrompt = `
-Goal-
Given a text that is potentially relevant to this activity and a list of entity types, identify all objects, their attributes, and relationships among the identified objects.

-Steps-
1. Identify all objects. For each identified object, extract the following information:
- object_name: Name of the object, capitalized.
- object_attribute: An attribute of the object (e.g., color, size, position).
Format each object as ("object"{tuple_delimiter}<object_name>{tuple_delimiter}<object_attribute>)

2. From the objects identified in step 1, identify all pairs of (source_object, target_object) that are *clearly related* to each other.
For each pair of related objects, extract the following information:
- source_object: name of the source object, as identified in step 1
- target_object: name of the target object, as identified in step 1
- relationship_description: explanation as to why you think the source object and the target object are related to each other
- relationship_strength: an integer score between 1 to 10, indicating strength of the relationship between the source object and target object
Format each relationship as ("relationship"{tuple_delimiter}<source_object>{tuple_delimiter}<target_object>{tuple_delimiter}<relationship_description>{tuple_delimiter}<relationship_strength>)

3. Return output in English as a numbered list of all the objects and relationships identified in steps 1 and 2. Use {record_delimiter} as the list delimiter.

4. Only translate descriptions if necessary.

5. When finished, output {completion_delimiter}.

######################
-Examples-
######################
Example 1:
Text:
There is an indoor mall with three illuminated escalators in the center. Various planters with lush greenery sit on both sides of the escalators. The floor is polished with colored tiles. A man is ascending the left escalator. The shops on the second floor appear to be some open and some closed. The ceiling has recessed lighting, and there are several stone columns.

Output:
1. ("object"{tuple_delimiter}INDOOR MALL{tuple_delimiter}has three illuminated escalators)
{record_delimiter}
2. ("object"{tuple_delimiter}ESCALATORS{tuple_delimiter}illuminated)
{record_delimiter}
3. ("object"{tuple_delimiter}PLANTERS{tuple_delimiter}various, with lush greenery on both sides of the escalators)
{record_delimiter}
4. ("object"{tuple_delimiter}GREENERY{tuple_delimiter}lush)
{record_delimiter}
5. ("object"{tuple_delimiter}FLOOR{tuple_delimiter}polished with colored tiles)
{record_delimiter}
6. ("object"{tuple_delimiter}MAN{tuple_delimiter}ascending the left escalator)
{record_delimiter}
7. ("object"{tuple_delimiter}SHOPS{tuple_delimiter}some open and some closed)
{record_delimiter}
8. ("object"{tuple_delimiter}CEILING{tuple_delimiter}has recessed lighting)
{record_delimiter}
9. ("object"{tuple_delimiter}STONE COLUMNS{tuple_delimiter}several)
{record_delimiter}
10. ("relationship"{tuple_delimiter}ESCALATORS{tuple_delimiter}INDOOR MALL{tuple_delimiter}The escalators are part of the indoor mall{tuple_delimiter}9)
{record_delimiter}
11. ("relationship"{tuple_delimiter}GREENERY{tuple_delimiter}PLANTERS{tuple_delimiter}The greenery is in the planters{tuple_delimiter}9)
{record_delimiter}
12. ("relationship"{tuple_delimiter}MAN{tuple_delimiter}ESCALATORS{tuple_delimiter}The man is ascending the left escalator{tuple_delimiter}7)
{record_delimiter}
13. ("relationship"{tuple_delimiter}SHOPS{tuple_delimiter}SECOND FLOOR{tuple_delimiter}The shops are on the second floor{tuple_delimiter}8)
{record_delimiter}
14. ("relationship"{tuple_delimiter}STONE COLUMNS{tuple_delimiter}INDOOR MALL{tuple_delimiter}The stone columns are part of the indoor mall{tuple_delimiter}8)
{completion_delimiter}

######################
-Real Data-
######################
entity_types: OBJECT, ATTRIBUTE
text: %s
######################
output:
`
