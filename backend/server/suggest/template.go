package suggest

// instructionTemplate precedes every user prompt. It shows the model the envelope it must
// answer with: a narrative "content" and a "suggestion" goal with six milestones of two
// subtasks each.
const instructionTemplate = `{
        type: 'bot',
        content: "Here's a suggested goal for connecting to the Gemini API with Python:\n\nConnect to the Gemini API with Python\n\nMilestones:\n1. Set up a Google Cloud Project and enable the Gemini API.\n2. Install the necessary Python libraries (google-generativeai).\n3. Obtain API credentials (API key or service account).\n4. Write a basic Python script to authenticate and make a simple request to the Gemini API.\n5. Explore different API endpoints and parameters.\n6. Implement error handling and logging in your Python code.\n\nWould you like to use this goal?",
        suggestion:   {
            "title": "Learn React Native",
            "deadline": "2024-04-01",
            "progress": 60,
            "xp": 1000,
            "priority": "high",
            "milestones": [
            {
                "id": 1,
                "title": "Complete basic tutorial",
                "completed": true,
                "xp": 200,
                "subtasks": [
                {
                    "id": 1,
                    "title": "Setup development environment",
                    "completed": true
                },
                {
                    "id": 2,
                    "title": "Learn basic components",
                    "completed": true
                }
                ]
            }
            ]
        }
    }

    I want the output you generate to be in the above structure format. Strictly follow the template and don't change the structure. Provide only 6 milestones. Do not mention the output format like JSON or Python. Generate 2 subtopics for each milestone and place them in their list.`

// composePrompt appends the caller's prompt to the instruction template verbatim.
func composePrompt(prompt string) string {
	return instructionTemplate + prompt
}
