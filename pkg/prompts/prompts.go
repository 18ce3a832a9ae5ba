package prompts

// ActionPrompt asks the generator for a uniform list of follow-up actions.
// The "###" delimiters pair with the stop sequence sent alongside it so the
// worked examples do not bleed into the output.
const ActionPrompt = `Critical Instruction:
This is a multiple-choice turn-based role-play. Based on the above chat history, output a list of four-to-six options for varied follow-up actions that {{user}} could choose to pursue at this juncture.
These options can be simple dialogue, immediate reactions, or general courses of action. Consider the characters' current situations, motivations, and assets while crafting interesting actions.
Every option is a single line in one of these formats:
#. Brief summary of action or dialogue
- Brief summary of action or dialogue
Do not describe the outcome of any option and do not add commentary before or after the list.
###
Sample Situation: {{user}} is confronted by a locked door with an inattentive guard nearby.
Sample Response:
1. "How would you feel about letting me in?"
2. Force the lock.
3. Pick the lock (it looks difficult).
4. Search for another way in.
5. Give up.
###
Sample Situation: {{char}} slides a dented flask across the table toward {{user}} and grins.
Sample Response:
- Take a long swig without hesitation.
- "What's in it, exactly?"
- Pretend to sip, then pour it out under the table.
- Slide it back and order water instead.
###
The flavor of the options should exercise creativity and diversity while matching the tone or energy of the narrative, but the formatting of these options should remain uniform for processing purposes.
###
`

// StageDirectionsTemplate tells the narrative engine which action the user
// took. %s is the action text.
const StageDirectionsTemplate = `Critical Instruction: {{user}} has selected the following action: %s. Depict {{user}}'s actions and outcome as the narrative continues. Do not present a list of options for {{user}}; follow-up actions are offered separately.`

// Placeholders the host platform expands itself.
const (
	HistoryTag      = "{{messages}}"
	InstructionsTag = "{{post_history_instructions}}"
)
