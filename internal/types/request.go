package types

// RequestType classifies an API call for logging and error context
type RequestType string

const (
	RequestTypeListOrSearch RequestType = "list_or_search"
	RequestTypeGetByID      RequestType = "get_by_id"
	RequestTypeMutation     RequestType = "mutation"
	RequestTypeDownload     RequestType = "download"
	RequestTypeUpload       RequestType = "upload"
)

// RequestContext carries tracing information for one logical operation
type RequestContext struct {
	Profile           string      `json:"profile"`
	DriveID           string      `json:"driveId,omitempty"`
	InvolvedFileIDs   []string    `json:"involvedFileIds,omitempty"`
	InvolvedParentIDs []string    `json:"involvedParentIds,omitempty"`
	RequestType       RequestType `json:"requestType"`
	TraceID           string      `json:"traceId"`
}
