package model

// EmailLookupStatus is the state of an asynchronous email finder job
type EmailLookupStatus string

const (
	EmailLookupSuccess    EmailLookupStatus = "success"
	EmailLookupProcessing EmailLookupStatus = "processing"
	EmailLookupError      EmailLookupStatus = "error"
)

// EmailLookup is one poll result of an email finder job
type EmailLookup struct {
	RequestID string
	Status    EmailLookupStatus
	Emails    []string
	Message   string
}

// Done reports whether polling can stop
func (x *EmailLookup) Done() bool {
	return x.Status == EmailLookupSuccess || x.Status == EmailLookupError
}
