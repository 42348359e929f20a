package convpolicy

// ──────────────────────────────────────────────
// Intent patterns: weights in [0,1], summed per intent
// ──────────────────────────────────────────────

func defaultIntentPatterns() PatternSet {
	l := func(i Intent) string { return string(i) }
	return joinSets(
		phrases(l(IntentGreeting), 0.6, "hello", "hi there", "hey there", "good morning",
			"good evening", "good afternoon", "assalam o alaikum", "assalamualaikum",
			"salam", "aoa", "adaab"),
		phrases(l(IntentGreeting), 0.3, "hey", "hiya", "what's up", "kya haal hai", "kaise ho"),
		// "hi" is also an Urdu/Hindi emphasis particle ("mujhe hi nahi pata")
		PatternSet{{Matcher: Regex(`^hi(?:$|[^\p{L}\p{N}'-])`), Weight: 0.3, Label: l(IntentGreeting)}},

		phrases(l(IntentFrustratedSeekingHelp), 0.6, "dimagh kharab", "dimaag kharab",
			"i'm so frustrated", "so frustrated", "nothing works", "i give up", "fed up",
			"tang aa gaya", "tang aa gayi", "pagal ho gaya"),
		phrases(l(IntentFrustratedSeekingHelp), 0.5, "samajh nahi aa raha", "samajh nahi aa rahi",
			"i don't understand", "i do not understand", "doesn't make sense", "makes no sense",
			"kuch samajh nahi", "help me please", "please help", "stuck again"),
		phrases(l(IntentFrustratedSeekingHelp), 0.35, "frustrated", "stuck", "pareshan",
			"confused", "help me", "madad karo", "kuch nahi ho raha", "why isn't it working"),

		phrases(l(IntentExploratoryPlayful), 0.5, "just curious", "fun fact", "random question",
			"what would happen if", "imagine if", "for fun", "wild idea"),
		phrases(l(IntentExploratoryPlayful), 0.3, "lol", "haha", "interesting", "weird", "mazay",
			"cool", "wonder"),

		phrases(l(IntentBrainstorming), 0.6, "let's brainstorm", "brainstorm", "ideas for",
			"help me think", "let's think together", "what are some ways", "mil kar sochte"),
		phrases(l(IntentBrainstorming), 0.35, "ideas", "options", "approaches", "what if we",
			"could we", "alternatives", "suggestions"),

		phrases(l(IntentDirectTask), 0.6, "solve this", "write a", "give me the answer",
			"just tell me", "calculate", "translate", "summarize", "list the", "jaldi batao",
			"answer this"),
		phrases(l(IntentDirectTask), 0.35, "asap", "quickly", "urgent", "jaldi", "do this",
			"fix this", "check my", "correct this"),

		phrases(l(IntentEmotionalSharing), 0.6, "i feel", "i'm feeling", "feeling down",
			"feeling low", "dil udaas", "mood off", "i'm sad", "i'm scared", "i feel lonely"),
		phrases(l(IntentEmotionalSharing), 0.35, "sad", "lonely", "upset", "udaas", "stressed",
			"worried", "tension", "depressed"),

		phrases(l(IntentVagueUnclear), 0.4, "something", "stuff", "whatever", "kuch bhi",
			"i don't know what", "not sure what"),

		phrases(l(IntentChallengingSkeptical), 0.6, "are you sure", "that's wrong",
			"that's not right", "prove it", "i don't believe", "you're wrong", "galat hai",
			"yeh galat", "source?", "says who"),
		phrases(l(IntentChallengingSkeptical), 0.35, "really?", "doubt", "skeptical", "but why",
			"how do you know", "not convinced"),

		phrases(l(IntentLearningFocused), 0.6, "explain", "teach me", "how does", "how do i",
			"what is the difference", "samjhao", "samjha do", "samjhaein", "i want to learn",
			"help me understand", "concept of", "what does", "why does"),
		phrases(l(IntentLearningFocused), 0.35, "learn", "understand", "what is", "how to",
			"example", "practice", "formula", "theory", "definition", "kaise karte"),

		phrases(l(IntentTestingSystem), 0.6, "are you a bot", "are you real", "are you human",
			"testing testing", "testing 123", "test message", "just testing", "can you hear me",
			"are you there", "is this working"),
		phrases(l(IntentTestingSystem), 0.3, "asdf", "ping", "hello?"),

		phrases(l(IntentEventSharing), 0.6, "i have an exam", "my exam is", "exam hai",
			"test hai", "interview hai", "going to a", "i'm going to", "tomorrow i have",
			"kal mera", "next week i have", "my birthday"),
		phrases(l(IntentEventSharing), 0.3, "wedding", "shaadi", "trip", "event",
			"competition", "presentation"),

		phrases(l(IntentPersonalUpdate), 0.5, "i just", "guess what", "update:", "i started",
			"i moved", "i joined", "these days i", "aaj kal main", "lately i"),
		phrases(l(IntentPersonalUpdate), 0.3, "my day", "my week", "recently"),

		phrases(l(IntentAchievementAnnouncement), 0.7, "i passed", "i got an a", "i aced",
			"i won", "i cleared", "top kiya", "pass ho gaya", "pass ho gayi", "i finally solved",
			"i got selected", "admission mil gaya", "full marks"),
		phrases(l(IntentAchievementAnnouncement), 0.35, "finally", "achieved", "nailed it",
			"proud", "got it right", "scored"),

		phrases(l(IntentChallengeDescription), 0.6, "i'm struggling with", "struggling with",
			"having trouble with", "i can't figure out", "the problem is", "mushkil lag raha",
			"difficult for me", "hard for me"),
		phrases(l(IntentChallengeDescription), 0.3, "difficult", "hard", "mushkil", "challenge",
			"problem with"),

		phrases(l(IntentMemoryReference), 0.6, "remember when", "last time", "you told me",
			"we talked about", "as you said", "pichli baar", "yaad hai", "earlier you said",
			"like before"),
		phrases(l(IntentMemoryReference), 0.3, "remember", "yaad", "previously", "again"),

		phrases(l(IntentPreferenceExpression), 0.6, "i prefer", "i like it when", "i'd rather",
			"i don't like", "mujhe pasand", "please be", "keep it short", "more detail",
			"in simple words", "simple words mein"),
		phrases(l(IntentPreferenceExpression), 0.3, "prefer", "rather", "pasand", "favorite",
			"favourite"),
	)
}

// ──────────────────────────────────────────────
// User-state patterns: evaluated in priority order, first match wins
// ──────────────────────────────────────────────

type stateRule struct {
	State    UserState
	Patterns PatternSet
}

func defaultStateRules() []stateRule {
	s := func(st UserState, w float64, ps ...string) PatternSet { return phrases(string(st), w, ps...) }
	return []stateRule{
		{StateFrustrated, joinSets(
			s(StateFrustrated, 0.6, "dimagh kharab", "dimaag kharab", "frustrated", "fed up",
				"i give up", "nothing works", "tang aa", "so annoying", "hate this", "pagal ho"),
			s(StateFrustrated, 0.3, "ugh", "argh", "annoying", "again and again", "bekar"),
		)},
		{StateConfused, joinSets(
			s(StateConfused, 0.6, "confused", "samajh nahi", "samjh nahi", "i don't understand",
				"i do not understand", "doesn't make sense", "makes no sense", "i'm lost",
				"what do you mean", "kuch samajh nahi", "not clear", "unclear to me"),
			s(StateConfused, 0.3, "huh", "lost", "confusing", "clarify", "kya matlab"),
		)},
		{StateProud, joinSets(
			s(StateProud, 0.6, "i passed", "i aced", "i won", "i cleared", "top kiya",
				"pass ho gaya", "pass ho gayi", "i finally solved", "got selected", "full marks",
				"proud of myself", "nailed it"),
			s(StateProud, 0.3, "proud", "achieved", "finally did it"),
		)},
		{StateNostalgic, joinSets(
			s(StateNostalgic, 0.6, "remember when", "back in the day", "those days", "woh din",
				"miss those", "used to", "pichli baar", "childhood", "bachpan"),
		)},
		{StateAnxious, joinSets(
			s(StateAnxious, 0.6, "nervous", "anxious", "worried", "scared", "afraid", "dar lag",
				"tension ho", "panic", "what if i fail"),
			s(StateAnxious, 0.3, "tension", "stress", "deadline", "exam tomorrow"),
		)},
		{StateOverwhelmed, joinSets(
			s(StateOverwhelmed, 0.6, "overwhelmed", "too much", "so much to", "bohat zyada",
				"can't keep up", "drowning in"),
		)},
		{StateExcited, joinSets(
			s(StateExcited, 0.6, "so excited", "can't wait", "excited", "yay", "woohoo",
				"bohat maza", "let's go"),
			s(StateExcited, 0.3, "awesome", "amazing", "zabardast"),
			PatternSet{{Matcher: Regex(`!{2,}`), Weight: 0.3, Label: string(StateExcited)}},
		)},
		{StateEngaged, joinSets(
			s(StateEngaged, 0.5, "tell me more", "and then", "what about", "interesting",
				"makes sense", "got it", "samajh aa gaya", "i see", "aur batao", "go on"),
			s(StateEngaged, 0.3, "cool", "nice", "okay next", "next"),
		)},
		{StateGrateful, joinSets(
			s(StateGrateful, 0.6, "thank you", "thanks", "shukriya", "jazakallah", "appreciate",
				"meherbani"),
		)},
		{StateConfident, joinSets(
			s(StateConfident, 0.6, "i got this", "i know this", "easy", "too easy", "i'm sure",
				"i already know", "piece of cake", "asaan hai"),
		)},
		{StateDisinterested, joinSets(
			s(StateDisinterested, 0.6, "boring", "whatever", "don't care", "meh", "who cares",
				"not interested", "faltu"),
		)},
		{StateCurious, joinSets(
			s(StateCurious, 0.5, "curious", "i wonder", "wondering", "why is", "how come",
				"what happens", "kyun hota"),
		)},
	}
}

// ──────────────────────────────────────────────
// Sentiment polarity lexicon
// ──────────────────────────────────────────────

func defaultSentimentPatterns() PatternSet {
	return joinSets(
		phrases(string(SentimentPositive), 1, "good", "great", "awesome", "amazing", "love",
			"happy", "thanks", "thank you", "nice", "excellent", "perfect", "easy", "fun",
			"got it", "understand now", "makes sense", "helpful", "glad", "excited", "proud",
			"acha", "achha", "zabardast", "kamaal", "khush", "shukriya", "maza", "passed",
			"solved", "won", "best"),
		phrases(string(SentimentNegative), 1, "bad", "terrible", "awful", "hate", "sad",
			"angry", "frustrated", "confused", "stuck", "difficult", "hard", "boring",
			"worried", "scared", "failed", "fail", "wrong", "useless", "annoying", "stupid",
			"kharab", "bekar", "pareshan", "mushkil", "udaas", "faltu", "ghussa", "tension",
			"nervous", "give up", "nothing works"),
	)
}

// interrogative detection for the intent fallback
var interrogativePattern = joinSets(
	phrases("q", 1, "what", "why", "how", "when", "where", "who", "which", "can you",
		"could you", "is it", "are there", "do you", "does it"),
	phrases("q", 1, "kya", "kaise", "kyun", "kab", "kahan", "kaun", "kitna", "konsa"),
)
