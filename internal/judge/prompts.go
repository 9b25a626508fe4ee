package judge

// Comparison prompts. Both require the response to end with a line of the
// form "... Serial Numbers: n1, n2, ..."; serial recovery keys off the last
// occurrence of that literal marker.

const hallucinationPrompt = `
-Goal-

Given two lists of objects, attributes, and relationships extracted from a ground truth (GT) caption and a Vision-Language Model (VLM) caption - both numbered - compare the VLM list to the GT list to identify any incorrect objects, attributes, or relationships in the VLM caption. An incorrect object, attribute, or relationship (hallucination) is one that does not correspond to any in the GT list. Importantly, use your language understanding to assess whether objects, attributes, and relationships convey the same meaning, even if expressed differently.

Instructions

Comparison Process:

Step 1: For each entry in the VLM list, determine if it exists in the GT list.

For Objects:
If an object in the VLM list matches an object in the GT list (considering synonyms and similar expressions), proceed to compare its attributes and relationships.
If an object in the VLM list does not exist in the GT list, classify it as an incorrect object (hallucination).
Important: If an incorrect object appears multiple times in the VLM list (with different attributes or relationships), it counts as one hallucination.
For Attributes:
An attribute in the VLM list matches the GT list if there is an object with the same name (or similar) and the attribute conveys the same meaning as an attribute of that object in the GT list, even if the wording is different.
If an object exists in both lists but has attributes in the VLM list that are not present in the GT list, classify each incorrect attribute as a hallucination.
For Relationships:
A relationship in the VLM list matches the GT list if there is a relationship with the same source object and target object, and the relationship description conveys the same meaning, even if the wording is different.
If a relationship in the VLM list involves an incorrect object (one not present in the GT list), it is considered part of the hallucination for that object and does not count separately.
If a relationship involves correct objects but introduces a new or significantly different relationship not present in the GT list, classify it as an incorrect relationship (hallucination).

Step 2: Compile the list of hallucinations.

Output Instructions:

Provide a brief analysis explaining which entries are incorrect and why, then collect all the serial numbers from the VLM list that correspond to incorrect objects (one per incorrect object), incorrect attributes, and incorrect relationships (excluding those involving already counted incorrect objects).
Present them in a single list, in numerical order, separated by commas, as the final line of your response.
Example: Incorrect Serial Numbers: 3, 6, 9
Do not include any additional explanations or text after that line.

Notes:

Semantic Matching: minor variations in wording or phrasing that convey the same meaning should be considered a match.
Case Sensitivity: object names and attributes are case-insensitive for matching purposes.
Ignore Serial Numbers in GT List: use the serial numbers only from the VLM list when reporting incorrect entries.

Your task is to compare the following lists and provide the incorrect serial numbers as per the instructions above.

GT List:

%s

VLM List:

%s`

const omissionPrompt = `
-Goal-

Given two lists of objects, attributes, and relationships extracted from a ground truth (GT) caption and a Vision-Language Model (VLM) caption - both numbered - compare the GT list to the VLM list to identify any missing objects, attributes, or relationships in the VLM caption. A missing object, attribute, or relationship is one that is present in the GT list but not in the VLM list. Importantly, use your language understanding to assess whether objects, attributes, and relationships convey the same meaning, even if expressed differently.

Instructions

Comparison Process:

Step 1: For each entry in the GT list, determine if it exists in the VLM list.

For Objects:
If an object in the GT list matches an object in the VLM list (considering synonyms and similar expressions), proceed to compare its attributes and relationships.
If an object in the GT list does not exist in the VLM list, classify it as a missing object.
Important: If a missing object appears multiple times in the GT list (with different attributes or relationships), it counts as one missing object.
For Attributes:
An attribute in the GT list matches the VLM list if there is an object with the same name (or similar) and the attribute conveys the same meaning as an attribute of that object in the VLM list, even if the wording is different.
If an object exists in both lists but has attributes in the GT list that are not present in the VLM list, classify each missing attribute as a missing attribute.
For Relationships:
A relationship in the GT list matches the VLM list if there is a relationship with the same source object and target object, and the relationship description conveys the same meaning, even if the wording is different.
If a relationship in the GT list involves a missing object (one not present in the VLM list), it is considered part of the missing information for that object and does not count separately.
If a relationship involves objects that are present in both lists but is missing from the VLM list, classify it as a missing relationship.

Step 2: Compile the list of missing elements.

Output Instructions:

Provide a brief analysis explaining which entries are missing and why, then collect all the serial numbers from the GT list that correspond to missing objects (one per missing object), missing attributes, and missing relationships (excluding those involving already counted missing objects).
Present them in a single list, in numerical order, separated by commas, as the final line of your response.
Example: Missing Serial Numbers: 3, 6, 9
Do not include any additional explanations or text after that line.

Notes:

Semantic Matching: minor variations in wording or phrasing that convey the same meaning should be considered a match.
Case Sensitivity: object names and attributes are case-insensitive for matching purposes.
Ignore Serial Numbers in VLM List: use the serial numbers only from the GT list when reporting missing entries.

Your task is to compare the following lists and provide the missing serial numbers as per the instructions above.

GT List:

%s

VLM List:

%s`
