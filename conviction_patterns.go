package convpolicy

// ──────────────────────────────────────────────
// Conviction scenarios
// ──────────────────────────────────────────────

// Scenario is the closed set of flawed-strategy situations that warrant pushback.
type Scenario string

const (
	ScenarioNone                  Scenario = "none"
	ScenarioFactualError          Scenario = "factual-error"
	ScenarioInefficientApproach   Scenario = "inefficient-approach"
	ScenarioContradictsGoals      Scenario = "contradicts-goals"
	ScenarioPotentiallyHarmful    Scenario = "potentially-harmful"
	ScenarioDeadEndPath           Scenario = "dead-end-path"
	ScenarioBetterAlternative     Scenario = "better-alternative"
	ScenarioLearningMisconception Scenario = "learning-misconception"
	ScenarioSkippingFundamentals  Scenario = "skipping-fundamentals"
	ScenarioPerfectionism         Scenario = "perfectionism-paralysis"
	ScenarioNegativeSelfTalk      Scenario = "negative-self-talk"
)

// AllScenarios lists every triggerable scenario in declaration order.
var AllScenarios = []Scenario{
	ScenarioFactualError,
	ScenarioInefficientApproach,
	ScenarioContradictsGoals,
	ScenarioPotentiallyHarmful,
	ScenarioDeadEndPath,
	ScenarioBetterAlternative,
	ScenarioLearningMisconception,
	ScenarioSkippingFundamentals,
	ScenarioPerfectionism,
	ScenarioNegativeSelfTalk,
}

func defaultScenarioPatterns() PatternSet {
	l := func(s Scenario) string { return string(s) }
	return joinSets(
		phrases(l(ScenarioPotentiallyHarmful), 0.9, "no sleep", "without sleeping",
			"all nighter", "all-nighter", "skip meals", "skip eating", "neend nahi",
			"stay up all night", "study all night", "3 energy drinks"),
		phrases(l(ScenarioPotentiallyHarmful), 0.7, "cheat in the exam", "nakal", "copy from",
			"buy the paper", "leaked paper"),

		phrases(l(ScenarioNegativeSelfTalk), 0.85, "i'm stupid", "i am stupid", "i'm so dumb",
			"i'm dumb", "i'll never understand", "i will never understand", "i'm useless",
			"i'm a failure", "mujh se nahi hoga", "mujhse nahi hoga", "main nalayak",
			"not a math person", "i'm not smart enough"),
		phrases(l(ScenarioNegativeSelfTalk), 0.5, "i can't do this", "i'm bad at"),

		phrases(l(ScenarioInefficientApproach), 0.8, "memorize all", "just memorize",
			"memorise all", "just memorise", "ratta maar", "ratta laga", "rattafication",
			"read it 100 times", "rewrite the whole book", "copy the whole chapter"),
		phrases(l(ScenarioInefficientApproach), 0.55, "memorize", "memorise", "ratta",
			"cram", "highlight everything"),

		phrases(l(ScenarioSkippingFundamentals), 0.75, "skip the basics", "skip basics",
			"don't need the basics", "jump straight to", "directly advanced", "basics chhor",
			"skip chapter 1", "skip the first chapter", "start from the hardest"),

		phrases(l(ScenarioLearningMisconception), 0.7, "only marks matter",
			"understanding doesn't matter", "no need to understand", "samajhne ki zaroorat nahi",
			"math is just memorizing", "some people are just born", "practice doesn't help",
			"either you get it or you don't"),

		phrases(l(ScenarioContradictsGoals), 0.7, "skip studying", "no need to study",
			"i'll study later", "baad mein parh", "start the night before", "i'll start tomorrow",
			"kal se parhunga", "kal se parhungi"),

		phrases(l(ScenarioPerfectionism), 0.7, "has to be perfect", "must be perfect",
			"until it's perfect", "can't start until", "not perfect enough", "perfect hona chahiye",
			"start over again from scratch"),

		phrases(l(ScenarioDeadEndPath), 0.65, "same method again", "keep trying the same",
			"tried it ten times", "tried 10 times", "bar bar same", "same way again",
			"keep doing the same thing"),

		phrases(l(ScenarioFactualError), 0.65, "divide by zero is", "dividing by zero gives",
			"the sun revolves around the earth", "heavier objects fall faster",
			"0.999 is less than 1", "pi equals 3"),

		phrases(l(ScenarioBetterAlternative), 0.5, "is there a better way", "easier way",
			"shortcut", "koi asaan tareeqa", "faster method"),
	)
}

// historyConfusionMarkers mark a prior user turn as confused.
var historyConfusionMarkers = confusionMarkers

// historyFailureMarkers mark a prior user turn as a failed attempt.
var historyFailureMarkers = phrases("failure", 1, "failed", "i failed", "didn't work",
	"did not work", "wrong again", "got it wrong", "still wrong", "fail ho gaya",
	"fail ho gayi", "nahi hua", "couldn't solve", "can't solve", "galat aaya")

// ──────────────────────────────────────────────
// Rationale & alternatives
// ──────────────────────────────────────────────

var scenarioRationale = map[Scenario]string{
	ScenarioFactualError:          "statement conflicts with established fact",
	ScenarioInefficientApproach:   "rote strategy with poor retention for the effort",
	ScenarioContradictsGoals:      "plan works against the user's stated goal",
	ScenarioPotentiallyHarmful:    "plan risks health or integrity",
	ScenarioDeadEndPath:           "repeating an approach that already failed",
	ScenarioBetterAlternative:     "a different method is likely to work better",
	ScenarioLearningMisconception: "belief about learning that undermines progress",
	ScenarioSkippingFundamentals:  "advanced material without prerequisites",
	ScenarioPerfectionism:         "perfection standard is blocking progress",
	ScenarioNegativeSelfTalk:      "self-judgement that erodes motivation",
}

var scenarioAlternatives = map[Scenario][]string{
	ScenarioFactualError: {
		"walk through the correct fact with a quick check the user can verify",
		"compare the claim against a worked counter-example",
	},
	ScenarioInefficientApproach: {
		"derive each formula once, then practise with spaced recall",
		"group formulas by the idea behind them and test with mixed problems",
	},
	ScenarioContradictsGoals: {
		"agree a small session today that moves toward the goal",
		"split the remaining time into short daily blocks",
	},
	ScenarioPotentiallyHarmful: {
		"plan focused sessions with sleep and breaks protected",
		"prioritise high-yield topics instead of extending hours",
	},
	ScenarioDeadEndPath: {
		"step back to locate the exact point where the method breaks",
		"try a different representation of the same problem",
	},
	ScenarioBetterAlternative: {
		"switch to a worked example and build up step by step",
		"explain the idea through an everyday analogy before the formal version",
	},
	ScenarioLearningMisconception: {
		"show how understanding makes recall and marks easier",
		"demonstrate growth with a problem the user could not solve earlier",
	},
	ScenarioSkippingFundamentals: {
		"run a five-minute check of the prerequisites first",
		"revisit only the basics that the advanced topic depends on",
	},
	ScenarioPerfectionism: {
		"aim for a rough first version and improve it in passes",
		"set a time box and accept good enough for the first draft",
	},
	ScenarioNegativeSelfTalk: {
		"name one thing the user already did correctly and build from it",
		"reframe the difficulty as a skill that grows with practice",
	},
}

var scenarioReasoning = map[Scenario][]string{
	ScenarioFactualError:          {"an incorrect premise will carry into every later step"},
	ScenarioInefficientApproach:   {"memorised formulas fade quickly without understanding", "retrieval practice beats rereading"},
	ScenarioContradictsGoals:      {"last-minute plans rarely leave room for revision"},
	ScenarioPotentiallyHarmful:    {"sleep loss reduces recall more than extra hours add"},
	ScenarioDeadEndPath:           {"repeating a failing method reinforces the same mistake"},
	ScenarioBetterAlternative:     {"repeated confusion signals the current explanation is not landing", "a new angle often unlocks a stuck concept"},
	ScenarioLearningMisconception: {"beliefs about ability shape how much effort feels worthwhile"},
	ScenarioSkippingFundamentals:  {"advanced topics assume the basics are automatic"},
	ScenarioPerfectionism:         {"progress comes from iteration, not a flawless first attempt"},
	ScenarioNegativeSelfTalk:      {"struggle is part of learning and not a verdict on ability"},
}

// ──────────────────────────────────────────────
// Intensity-keyed phrase banks
// ──────────────────────────────────────────────

var acknowledgeBank = map[ConvictionIntensity][]string{
	IntensityGentle: {
		"acknowledge the effort warmly",
		"validate the feeling before suggesting anything",
		"thank the user for sharing the plan",
	},
	IntensityMedium: {
		"acknowledge the plan and its intent",
		"recognise the goal behind the approach",
	},
	IntensityFirm: {
		"acknowledge briefly and move to the concern",
		"name the intent in one line",
	},
}

var nudgeBank = map[ConvictionIntensity][]string{
	IntensityGentle: {
		"offer the alternative as something to try together",
		"suggest a small experiment with the new approach",
	},
	IntensityMedium: {
		"recommend the alternative clearly with one concrete example",
		"contrast the expected outcome of both approaches",
	},
	IntensityFirm: {
		"state plainly that the current approach should change",
		"be direct that the plan is likely to backfire",
	},
}

var empowerBank = map[ConvictionIntensity][]string{
	IntensityGentle: {
		"leave the choice with the user and offer help either way",
		"invite the user to pick what feels right",
	},
	IntensityMedium: {
		"ask which option the user wants to start with",
		"offer to set up the first step right now",
	},
	IntensityFirm: {
		"respect the final decision while restating the recommendation",
		"ask the user to commit to one step of the alternative",
	},
}
