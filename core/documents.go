package core

import (
	"encoding/json"
)

const ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"

const (
	ActivityTypeAdd    = "Add"
	ActivityTypeAccept = "Accept"
)

// Activity is the wire envelope for an exchanged activity. Object is
// kept raw; the variant dispatcher decodes it per declared Type.
type Activity struct {
	Context any             `json:"@context,omitempty"`
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Actor   string          `json:"actor"`
	Object  json.RawMessage `json:"object,omitempty"`
	Target  string          `json:"target,omitempty"`
}

// ArticleDoc is the object of an Add activity: the proposed chapter
// content, before any identifier or sequence number exists.
type ArticleDoc struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	Sensitive bool   `json:"sensitive"`
	Content   string `json:"content,omitempty"`
}

// PublicKeyDoc is the publishable key block of an actor document.
type PublicKeyDoc struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// ActorDoc is the public representation of an Actor. Private fields are
// never part of it.
type ActorDoc struct {
	Context           any          `json:"@context"`
	Type              string       `json:"type"`
	ID                string       `json:"id"`
	PreferredUsername string       `json:"preferredUsername"`
	Name              string       `json:"name"`
	Summary           string       `json:"summary"`
	Inbox             string       `json:"inbox"`
	Outbox            string       `json:"outbox"`
	PublicKey         PublicKeyDoc `json:"publicKey"`
	Published         string       `json:"published"`

	// Group-only fields
	Authors   []AuthorDoc `json:"authors,omitempty"`
	Genre     string      `json:"genre,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	Language  string      `json:"language,omitempty"`
	Sensitive bool        `json:"sensitive,omitempty"`
}

// AuthorDoc is one entry of a novel document's author list.
type AuthorDoc struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// ChapterDoc is the public representation of a Chapter.
type ChapterDoc struct {
	Context   any     `json:"@context"`
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Audience  string  `json:"audience"`
	Summary   string  `json:"summary"`
	Sensitive bool    `json:"sensitive"`
	Content   string  `json:"content"`
	Published string  `json:"published"`
	Updated   *string `json:"updated,omitempty"`
}

// CollectionDoc is an ordered collection of object identifiers.
type CollectionDoc struct {
	Context      any      `json:"@context"`
	Type         string   `json:"type"`
	TotalItems   int      `json:"totalItems"`
	OrderedItems []string `json:"orderedItems"`
}
