package storyspoiler

// StoryDraft is the payload for create and edit.
type StoryDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// StoryRecord is a stored story as returned by the list endpoint.
type StoryRecord struct {
	StoryID     string `json:"storyId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Envelope is the acknowledgment returned by mutating endpoints.
type Envelope struct {
	Msg string `json:"msg"`
}

// CreateResponse is the create endpoint's envelope plus the new id.
type CreateResponse struct {
	StoryID string `json:"storyId"`
	Msg     string `json:"msg"`
}

// Messages the service returns.
const (
	MsgCreated        = "Successfully created!"
	MsgEdited         = "Successfully edited"
	MsgDeleted        = "Deleted successfully!"
	MsgNotFound       = "No spoilers..."
	MsgUnableToDelete = "Unable to delete this story spoiler!"
)
