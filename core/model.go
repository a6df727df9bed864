package core

import (
	"time"

	"github.com/lib/pq"
)

const (
	KindPerson = "Person"
	KindGroup  = "Group"
)

// Actor is a federated identity: a Person (individual account) or a
// Group (novel). Local actors carry a private key; rows fetched from
// other servers are read-only mirrors refreshed via LastRefreshAt.
type Actor struct {
	ID            string    `json:"id" gorm:"primaryKey;type:text"`
	Kind          string    `json:"kind" gorm:"type:text"`
	Domain        string    `json:"domain" gorm:"type:text;uniqueIndex:uniq_actor_handle"`
	PreferredName string    `json:"preferredUsername" gorm:"type:text;uniqueIndex:uniq_actor_handle"`
	Name          string    `json:"name" gorm:"type:text"`
	Summary       string    `json:"summary" gorm:"type:text"`
	PublicKey     string    `json:"publicKey" gorm:"type:text"`
	PrivateKey    *string   `json:"-" gorm:"type:text;default:null"`
	Inbox         string    `json:"inbox" gorm:"type:text"`
	Outbox        string    `json:"outbox" gorm:"type:text"`
	PublishedAt   time.Time `json:"published" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	LastRefreshAt time.Time `json:"lastRefreshAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// NovelProfile carries the Group-only attributes of a novel.
type NovelProfile struct {
	ActorID   string         `json:"actorID" gorm:"primaryKey;type:text"`
	Genre     string         `json:"genre" gorm:"type:text"`
	Tags      pq.StringArray `json:"tags" gorm:"type:text[]"`
	Language  string         `json:"language" gorm:"type:text"`
	Sensitive bool           `json:"sensitive" gorm:"type:boolean;default:false"`
}

// Authorship grants a Person write access to a novel.
// Rows are append-only; the role is informational.
type Authorship struct {
	NovelID  string    `json:"novelID" gorm:"primaryKey;type:text"`
	AuthorID string    `json:"authorID" gorm:"primaryKey;type:text"`
	Role     string    `json:"role" gorm:"type:text"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// Chapter is owned by exactly one novel (its audience). The sequence
// number is unique and strictly increasing per audience; the identifier
// is derived from it and never user-supplied.
type Chapter struct {
	ID            string     `json:"id" gorm:"primaryKey;type:text"`
	Audience      string     `json:"audience" gorm:"type:text;uniqueIndex:uniq_chapter_seq"`
	Title         string     `json:"title" gorm:"type:text"`
	Summary       string     `json:"summary" gorm:"type:text"`
	Content       string     `json:"content" gorm:"type:text"`
	Sensitive     bool       `json:"sensitive" gorm:"type:boolean;default:false"`
	Sequence      int        `json:"sequence" gorm:"type:integer;uniqueIndex:uniq_chapter_seq"`
	PublishedAt   time.Time  `json:"published" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt     *time.Time `json:"updated,omitempty" gorm:"type:timestamp with time zone;default:null"`
	LastRefreshAt time.Time  `json:"-" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

const (
	ActivityStatusRequested = "requested"
	ActivityStatusAccepted  = "accepted"
	ActivityStatusReceived  = "received"
)

// ActivityRecord is delivery/receipt bookkeeping for exchanged
// activities. It is not part of the content model.
type ActivityRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Type      string    `json:"type" gorm:"type:text"`
	Status    string    `json:"status" gorm:"type:text"`
	ActorID   string    `json:"actorID" gorm:"type:text"`
	TargetID  string    `json:"targetID" gorm:"type:text"`
	ChapterID *string   `json:"chapterID,omitempty" gorm:"type:text;default:null"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate     time.Time `json:"mdate" gorm:"autoUpdateTime"`
}

// ChapterDraft is the author-supplied part of a new chapter.
type ChapterDraft struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Sensitive bool   `json:"sensitive"`
}

// ChapterEntry is one position of a chapter listing. Either Chapter is
// set, or Error describes why the item at ID could not be materialized.
type ChapterEntry struct {
	ID      string   `json:"id"`
	Chapter *Chapter `json:"chapter,omitempty"`
	Error   string   `json:"error,omitempty"`
}

const (
	CreationStatusCreated   = "created"
	CreationStatusRequested = "requested"
)

// CreationResult reports how a chapter-creation request concluded:
// created synchronously on this server, or requested from a remote one.
type CreationResult struct {
	Status     string `json:"status"`
	ChapterID  string `json:"chapterID,omitempty"`
	ActivityID string `json:"activityID,omitempty"`
}

// QueuedActivity is one outbound delivery: a serialized activity
// addressed to a remote inbox, signed as SignerID on the way out.
type QueuedActivity struct {
	TargetInbox string `json:"targetInbox"`
	SignerID    string `json:"signerID"`
	Payload     string `json:"payload"`
	FailCount   int    `json:"failCount"`
}

// Event is the realtime packet published when a chapter is created.
type Event struct {
	Novel   string  `json:"novel"`
	Type    string  `json:"type"`
	Action  string  `json:"action"`
	Chapter Chapter `json:"chapter"`
}
