package auth

const (
	RequesterTypeCtxKey = "iw-requesterType"
	RequesterIDCtxKey   = "iw-requesterId"
)

const (
	Unknown = iota
	LocalUser
	Admin
)
