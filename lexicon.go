package convpolicy

// ──────────────────────────────────────────────
// Curated lexicons (English + romanized Urdu/Hindi)
// ──────────────────────────────────────────────
//
// Homograph-prone romanized words stay out of the vernacular lists: "main",
// "mat", "to", "na", "bas", "hi", "me", "han", "boss", "scene". They collide
// with common English words.

var subjectLexicon = []string{
	"math", "maths", "mathematics", "algebra", "geometry", "calculus", "trigonometry",
	"statistics", "probability", "physics", "chemistry", "biology", "science",
	"english", "urdu", "grammar", "essay", "literature", "history", "geography",
	"economics", "accounting", "business studies", "computer science", "programming",
	"coding", "python", "javascript", "java", "golang", "data structures", "algorithms",
	"islamiat", "pak studies", "pakistan studies", "sociology", "psychology",
	"philosophy", "organic chemistry", "thermodynamics", "mechanics", "vectors",
	"matrices", "differentiation", "integration", "derivatives", "fractions",
	"equations", "quadratic equations", "linear algebra", "vocabulary", "writing",
}

var placeLexicon = []string{
	"karachi", "lahore", "islamabad", "rawalpindi", "peshawar", "quetta", "multan",
	"faisalabad", "hyderabad", "sialkot", "pakistan", "india", "delhi", "mumbai",
	"dubai", "london", "new york", "toronto", "canada", "america", "usa", "uk",
	"england", "saudi arabia", "makkah", "madinah", "murree", "hunza", "gilgit",
	"library", "classroom", "hostel", "campus",
}

var institutionLexicon = []string{
	"lums", "nust", "giki", "iba", "comsats", "aga khan", "punjab university",
	"karachi university", "cambridge", "oxford", "harvard", "mit", "stanford",
	"university", "college", "school", "academy", "madrasa", "coaching center",
	"tuition center", "board", "federal board", "o levels", "a levels", "matric", "fsc",
}

var nameLexicon = []string{
	"ali", "ahmed", "ahmad", "hassan", "hussain", "usman", "bilal", "hamza", "omar",
	"umar", "zain", "saad", "fatima", "ayesha", "aisha", "sara", "sana", "zainab",
	"maryam", "hira", "amna", "khadija", "imran", "asif", "ayaan", "john", "sarah",
	"michael", "emma", "david",
}

var timeLexicon = []string{
	"today", "tomorrow", "yesterday", "tonight", "this morning", "this evening",
	"next week", "last week", "next month", "last month", "this weekend",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "june", "july", "august",
	"september", "october", "november", "december",
	"aaj", "kal", "parson", "abhi", "subah", "shaam", "raat", "agle hafte",
	"pichle hafte", "agle mahine",
}

var emotionLexicon = []string{
	"happy", "sad", "angry", "scared", "afraid", "nervous", "worried", "anxious",
	"excited", "proud", "tired", "bored", "lonely", "stressed", "upset", "frustrated",
	"confused", "grateful", "relieved", "overwhelmed", "disappointed",
	"khush", "udaas", "pareshan", "ghussa", "dar", "thaka", "tension", "sukoon",
}

var eventLexicon = []string{
	"exam", "exams", "test", "quiz", "midterm", "midterms", "finals", "final exam",
	"interview", "presentation", "assignment", "deadline", "result", "results",
	"admission", "graduation", "convocation", "competition", "olympiad", "entry test",
	"mdcat", "ecat", "ielts", "toefl", "wedding", "shaadi", "birthday", "eid",
	"ramzan", "ramadan", "holiday", "vacation", "chuttiyan", "trip", "match",
}

// Cultural-register markers by category. Every entry also counts as a
// vernacular token for mixed-language detection.
var culturalMarkerLexicon = map[string][]string{
	"casual": {
		"yaar", "yar", "bhai", "bhaiya", "acha", "achha", "accha", "theek", "thik",
		"chalo", "arre", "arey", "oye", "jani", "kya scene",
	},
	"emphasis": {
		"bohat", "bahut", "bohot", "bht", "bilkul", "zabardast", "kamaal", "sach mein",
		"pakka", "ekdum", "bilkul sahi", "sakht",
	},
	"question": {
		"kya", "kaise", "kaisay", "kyun", "kyon", "kab", "kahan", "kaun", "kitna",
		"kitni", "konsa", "kis tarah",
	},
	"affirmative": {
		"haan", "ji", "jee", "ji haan", "sahi", "theek hai", "thik hai", "zaroor",
	},
	"negative": {
		"nahi", "nahin", "nai", "mat karo", "bilkul nahi", "kabhi nahi",
	},
}

// culturalMarkerOrder fixes iteration order over culturalMarkerLexicon.
var culturalMarkerOrder = []string{"casual", "emphasis", "question", "affirmative", "negative"}

// generalVernacular are romanized words that signal mixing but carry no register.
var generalVernacular = []string{
	"samajh", "samjh", "samjha", "samjhao", "samjhaein", "dimagh", "dimaag", "kharab",
	"mushkil", "aasan", "asaan", "parhai", "parhna", "padhai", "kaam", "karna",
	"karo", "kar", "raha", "rahi", "rahe", "gaya", "gayi", "hai", "hain", "tha",
	"thi", "hoga", "mera", "meri", "mujhe", "mujhay", "tum", "aap", "apna",
	"wala", "wali", "ho", "hogaya", "ho gaya", "aa raha", "lekin", "phir", "abhi",
	"sab", "kuch", "koi", "bata", "batao", "batain", "dekho", "suno", "shukriya",
	"meherbani", "ustad", "sir ji", "dost", "zindagi", "dil", "pareshan", "bekar",
	"faltu", "mazay", "maza", "ratta", "rattafication",
}

// Formal English register markers with weights.
var formalMarkers = PatternSet{
	{Matcher: Phrase("kindly"), Weight: 0.25, Label: "formal"},
	{Matcher: Phrase("please"), Weight: 0.15, Label: "formal"},
	{Matcher: Phrase("would you"), Weight: 0.2, Label: "formal"},
	{Matcher: Phrase("could you"), Weight: 0.2, Label: "formal"},
	{Matcher: Phrase("i would like"), Weight: 0.25, Label: "formal"},
	{Matcher: Phrase("i would appreciate"), Weight: 0.3, Label: "formal"},
	{Matcher: Phrase("regards"), Weight: 0.3, Label: "formal"},
	{Matcher: Phrase("sincerely"), Weight: 0.3, Label: "formal"},
	{Matcher: Phrase("respected"), Weight: 0.3, Label: "formal"},
	{Matcher: Phrase("dear"), Weight: 0.2, Label: "formal"},
	{Matcher: Phrase("thank you"), Weight: 0.15, Label: "formal"},
	{Matcher: Phrase("furthermore"), Weight: 0.2, Label: "formal"},
	{Matcher: Phrase("therefore"), Weight: 0.15, Label: "formal"},
	{Matcher: Phrase("however"), Weight: 0.1, Label: "formal"},
	{Matcher: Phrase("assistance"), Weight: 0.2, Label: "formal"},
	{Matcher: Phrase("clarification"), Weight: 0.2, Label: "formal"},
	{Matcher: Phrase("sir"), Weight: 0.1, Label: "formal"},
	{Matcher: Phrase("madam"), Weight: 0.15, Label: "formal"},
}

// Casual English slang with weights. Vernacular markers add their own weight.
var casualMarkers = PatternSet{
	{Matcher: Phrase("lol"), Weight: 0.25, Label: "casual"},
	{Matcher: Phrase("lmao"), Weight: 0.3, Label: "casual"},
	{Matcher: Phrase("haha"), Weight: 0.2, Label: "casual"},
	{Matcher: Phrase("gonna"), Weight: 0.2, Label: "casual"},
	{Matcher: Phrase("wanna"), Weight: 0.2, Label: "casual"},
	{Matcher: Phrase("gotta"), Weight: 0.2, Label: "casual"},
	{Matcher: Phrase("dude"), Weight: 0.25, Label: "casual"},
	{Matcher: Phrase("bro"), Weight: 0.25, Label: "casual"},
	{Matcher: Phrase("omg"), Weight: 0.2, Label: "casual"},
	{Matcher: Phrase("hey"), Weight: 0.1, Label: "casual"},
	{Matcher: Phrase("pls"), Weight: 0.15, Label: "casual"},
	{Matcher: Phrase("plz"), Weight: 0.15, Label: "casual"},
	{Matcher: Phrase("u"), Weight: 0.15, Label: "casual"},
	{Matcher: Phrase("ur"), Weight: 0.15, Label: "casual"},
	{Matcher: Phrase("idk"), Weight: 0.2, Label: "casual"},
	{Matcher: Phrase("tbh"), Weight: 0.2, Label: "casual"},
	{Matcher: Phrase("btw"), Weight: 0.15, Label: "casual"},
	{Matcher: Phrase("yeah"), Weight: 0.1, Label: "casual"},
	{Matcher: Phrase("nah"), Weight: 0.15, Label: "casual"},
	{Matcher: Phrase("cool"), Weight: 0.1, Label: "casual"},
}

// weight each register category contributes to the casual side of formality.
const vernacularCasualWeight = 0.2

var (
	salutationPattern  = Regex(`^\s*(dear|respected|hello sir|good (morning|afternoon|evening)|greetings)\b`)
	valedictionPattern = Regex(`\b(regards|sincerely|yours truly|thank you|thanks in advance)[\s.!]*$`)
)
