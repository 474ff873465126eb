package domain

// Result is the outcome of one successful Web API call.
type Result struct {
	CallID      string `json:"call_id"`
	Interface   string `json:"interface"`
	Method      string `json:"method"`
	Version     int    `json:"version"`
	Format      string `json:"format"`
	Body        string `json:"body"`
	Fingerprint string `json:"fingerprint"`
}
