package similarity

var (
	BuildPrompt = buildPrompt
	ParseScore  = parseScore
)
