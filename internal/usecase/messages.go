package usecase

// User-facing texts. They double as translation keys.
const (
	msgWorkflowConfirm = "The current item \"{0}\" is in the workflow state \"{1}\"\nand will not be published.\n\nAre you sure you want to publish?"
	msgPublishConfirm  = "Are you sure you want to publish \"{0}\"\nin every language to every publishing target?"
	msgNoTargets       = "No target databases were found for publishing."
	msgNoLanguages     = "No languages were found for publishing."
	msgItemNotFound    = "Item not found."
	msgPublishing      = "The item is being published."
	msgAuditPublish    = "Publish item now: {0}"
)

const defaultAffirmative = "yes"
