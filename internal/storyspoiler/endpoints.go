package storyspoiler

import (
	"net/url"
	"strings"
)

const (
	AuthenticationEndpoint = "/api/User/Authentication"
	CreateEndpoint         = "/api/Story/Create"
	EditEndpoint           = "/api/Story/Edit/{id}"
	AllEndpoint            = "/api/Story/All"
	DeleteEndpoint         = "/api/Story/Delete/{id}"
)

func GetEditEndpoint(id string) string {
	return strings.Replace(EditEndpoint, "{id}", url.PathEscape(id), 1)
}

func GetDeleteEndpoint(id string) string {
	return strings.Replace(DeleteEndpoint, "{id}", url.PathEscape(id), 1)
}
