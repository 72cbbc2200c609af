package havs

// Unexported helpers reached from the havs_test package.
var (
	LoadDraftWeek = loadDraftWeek
	TouchDraft    = touchDraft
)
