package webfinger

// WebFinger is a struct for a WebFinger response.
type WebFinger struct {
	Subject string          `json:"subject"`
	Links   []WebFingerLink `json:"links"`
}

// WebFingerLink is a struct for the links field of a WebFinger response.
type WebFingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// WellKnown is a struct for a nodeinfo discovery response.
type WellKnown struct {
	Links []WellKnownLink `json:"links"`
}

// WellKnownLink is a struct for the links field of a nodeinfo discovery
// response.
type WellKnownLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// NodeInfo is a nodeinfo 2.0 document.
type NodeInfo struct {
	Version           string           `json:"version"`
	Software          NodeInfoSoftware `json:"software"`
	Protocols         []string         `json:"protocols"`
	OpenRegistrations bool             `json:"openRegistrations"`
	Metadata          NodeInfoMetadata `json:"metadata"`
}

type NodeInfoSoftware struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type NodeInfoMetadata struct {
	NodeName        string                     `json:"nodeName"`
	NodeDescription string                     `json:"nodeDescription"`
	Maintainer      NodeInfoMetadataMaintainer `json:"maintainer"`
	ThemeColor      string                     `json:"themeColor"`
}

type NodeInfoMetadataMaintainer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
