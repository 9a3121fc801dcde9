package assessment

// Personality is the 8 question archetype assessment.
var Personality = Questionnaire{ //nolint:gochecknoglobals // immutable questionnaire.
	Name: "personality",
	Questions: []Question{
		{ID: 1, Prompt: "At a party, you are most likely to...", Options: [4]string{
			"Be at the centre of the conversation",
			"Have a deep talk with one person",
			"Observe and take everything in",
			"Help the host keep things running",
		}},
		{ID: 2, Prompt: "When facing a difficult decision, you rely on...", Options: [4]string{
			"Logic and careful analysis",
			"Gut feeling and intuition",
			"Advice from people you trust",
			"Past experience and proven methods",
		}},
		{ID: 3, Prompt: "Your ideal weekend looks like...", Options: [4]string{
			"An adventure somewhere new",
			"A quiet day with a good book",
			"Creating something with your hands",
			"Quality time with friends and family",
		}},
		{ID: 4, Prompt: "Others usually come to you for...", Options: [4]string{
			"Honest advice",
			"Encouragement and comfort",
			"New ideas and inspiration",
			"Practical help getting things done",
		}},
		{ID: 5, Prompt: "What frustrates you the most?", Options: [4]string{
			"Injustice and unfairness",
			"Boredom and routine",
			"Chaos and disorganisation",
			"Shallow conversations",
		}},
		{ID: 6, Prompt: "In a team, you naturally take the role of...", Options: [4]string{
			"The leader who sets direction",
			"The creative who generates ideas",
			"The mediator who keeps harmony",
			"The specialist who masters the details",
		}},
		{ID: 7, Prompt: "What do you want to be remembered for?", Options: [4]string{
			"The wisdom you shared",
			"The people you cared for",
			"The things you built",
			"The boundaries you pushed",
		}},
		{ID: 8, Prompt: "When things go wrong, your first instinct is to...", Options: [4]string{
			"Understand why it happened",
			"Take action and fix it",
			"Check that everyone is okay",
			"Look for the hidden opportunity",
		}},
	},
}

// Temperament is the 12 question temperament assessment.
var Temperament = Questionnaire{ //nolint:gochecknoglobals // immutable questionnaire.
	Name: "temperament",
	Questions: []Question{
		{ID: 1, Prompt: "How do you recharge after a long week?", Options: [4]string{
			"Going out with a big group",
			"Spending time alone",
			"A spontaneous trip or activity",
			"Catching up on plans and chores",
		}},
		{ID: 2, Prompt: "How quickly do you make decisions?", Options: [4]string{
			"Instantly, I trust my first impulse",
			"After weighing every option",
			"Once I know how others feel about it",
			"When I have a clear plan in place",
		}},
		{ID: 3, Prompt: "How do you react to sudden change?", Options: [4]string{
			"Excited, bring it on",
			"Anxious until I understand it",
			"Calm, I go with the flow",
			"Focused, I take charge",
		}},
		{ID: 4, Prompt: "Your workspace is usually...", Options: [4]string{
			"Colourful and a bit chaotic",
			"Meticulously organised",
			"Comfortable and relaxed",
			"Set up for maximum efficiency",
		}},
		{ID: 5, Prompt: "In an argument, you tend to...", Options: [4]string{
			"Speak up passionately",
			"Withdraw and reflect",
			"Seek a compromise",
			"Push firmly for your position",
		}},
		{ID: 6, Prompt: "What motivates you most?", Options: [4]string{
			"Fun and new experiences",
			"Doing things the right way",
			"Peace and stability",
			"Achievement and results",
		}},
		{ID: 7, Prompt: "How do you handle deadlines?", Options: [4]string{
			"Last-minute burst of energy",
			"Finished early and double-checked",
			"Steady pace, no stress",
			"Drive the team to finish on time",
		}},
		{ID: 8, Prompt: "Which word describes you best?", Options: [4]string{
			"Enthusiastic",
			"Thoughtful",
			"Easygoing",
			"Determined",
		}},
		{ID: 9, Prompt: "How do you express emotions?", Options: [4]string{
			"Openly and immediately",
			"Privately and deeply",
			"Rarely, I stay even-keeled",
			"Through action rather than words",
		}},
		{ID: 10, Prompt: "What drains your energy the fastest?", Options: [4]string{
			"Being stuck with routine tasks",
			"Careless mistakes and sloppiness",
			"Conflict and pressure",
			"Indecision and slow progress",
		}},
		{ID: 11, Prompt: "In a new group, you...", Options: [4]string{
			"Introduce yourself to everyone",
			"Wait until you feel comfortable",
			"Blend in and listen",
			"Quickly find a role to play",
		}},
		{ID: 12, Prompt: "Your approach to rules is...", Options: [4]string{
			"They are more like guidelines",
			"They exist for good reasons",
			"Follow them if it keeps the peace",
			"Bend them if it gets results",
		}},
	},
}
