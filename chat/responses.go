package chat

// Canned responses, one of which is picked at random.
var (
	GreetingResponses = []string{
		"Hello! I'm your Swiss initiatives chatbot. How can I help you today?",
		"Grüezi! Ask me anything about Swiss popular initiatives.",
		"Bonjour! I'm here to answer your questions about Swiss initiatives.",
		"Buongiorno! What would you like to know about Swiss popular initiatives?",
	}

	FarewellResponses = []string{
		"Goodbye! Feel free to return if you have more questions.",
		"Auf Wiedersehen! Come back anytime.",
		"Au revoir! Happy to help you again soon.",
		"Arrivederci! Have a great day!",
	}

	FallbackResponses = []string{
		"I'm not sure I understand. Could you rephrase your question about Swiss initiatives?",
		"I don't have information about that. Would you like to know about a specific Swiss initiative?",
		"I can help with questions about Swiss popular initiatives. What would you like to know?",
	}
)

// ProcessDescription explains how a popular initiative comes about.
const ProcessDescription = `## The Swiss popular initiative

1. **Committee**: 7 to 27 Swiss voters form an initiative committee.
2. **Preliminary review**: the Federal Chancellery checks the signature list and the title before publication in the Federal Gazette.
3. **Collection**: 100,000 valid signatures must be collected within 18 months.
4. **Submission**: the Federal Chancellery verifies the signatures and declares the initiative valid.
5. **Parliament**: the Federal Council and Parliament debate it and may propose a counter-proposal.
6. **Vote**: the initiative is accepted if a majority of the people and of the cantons approve it.`
