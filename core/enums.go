package core

// Role describes the kind of contribution an author makes to a novel.
// Any role grants write access; the value itself is informational.
type Role string

const (
	RoleNone         Role = "None"
	RoleWriter       Role = "Writer"
	RoleAdapter      Role = "Adapter"
	RoleArtist       Role = "Artist"
	RolePenciller    Role = "Penciller"
	RoleInker        Role = "Inker"
	RoleColorist     Role = "Colorist"
	RoleLetterer     Role = "Letterer"
	RoleCoverArtist  Role = "Cover Artist"
	RolePhotographer Role = "Photographer"
	RoleEditor       Role = "Editor"
	RoleAssistant    Role = "Assistant"
	RoleTranslator   Role = "Translator"
	RoleOther        Role = "Other"
)

var roles = map[string]Role{
	string(RoleNone):         RoleNone,
	string(RoleWriter):       RoleWriter,
	string(RoleAdapter):      RoleAdapter,
	string(RoleArtist):       RoleArtist,
	string(RolePenciller):    RolePenciller,
	string(RoleInker):        RoleInker,
	string(RoleColorist):     RoleColorist,
	string(RoleLetterer):     RoleLetterer,
	string(RoleCoverArtist):  RoleCoverArtist,
	string(RolePhotographer): RolePhotographer,
	string(RoleEditor):       RoleEditor,
	string(RoleAssistant):    RoleAssistant,
	string(RoleTranslator):   RoleTranslator,
	string(RoleOther):        RoleOther,
}

// ParseRole maps a string onto the closed role enumeration.
func ParseRole(s string) (Role, error) {
	if role, ok := roles[s]; ok {
		return role, nil
	}
	return RoleNone, NewErrorBadRequest("invalid role: " + s)
}

// Genre classifies a novel.
type Genre string

const (
	GenreAction      Genre = "Action"
	GenreAdventure   Genre = "Adventure"
	GenreComedy      Genre = "Comedy"
	GenreDrama       Genre = "Drama"
	GenreEducational Genre = "Educational"
	GenreFantasy     Genre = "Fantasy"
	GenreHistory     Genre = "History"
	GenreHorror      Genre = "Horror"
	GenreMystery     Genre = "Mystery"
	GenreNonFiction  Genre = "Non-Fiction"
	GenreRomance     Genre = "Romance"
	GenreSciFi       Genre = "Sci-Fi"
	GenreSliceOfLife Genre = "Slice of Life"
	GenreSports      Genre = "Sports"
	GenreSuperhero   Genre = "Superhero"
	GenreThriller    Genre = "Thriller"
	GenreOther       Genre = "Other"
)

var genres = map[string]Genre{
	string(GenreAction):      GenreAction,
	string(GenreAdventure):   GenreAdventure,
	string(GenreComedy):      GenreComedy,
	string(GenreDrama):       GenreDrama,
	string(GenreEducational): GenreEducational,
	string(GenreFantasy):     GenreFantasy,
	string(GenreHistory):     GenreHistory,
	string(GenreHorror):      GenreHorror,
	string(GenreMystery):     GenreMystery,
	string(GenreNonFiction):  GenreNonFiction,
	string(GenreRomance):     GenreRomance,
	string(GenreSciFi):       GenreSciFi,
	string(GenreSliceOfLife): GenreSliceOfLife,
	string(GenreSports):      GenreSports,
	string(GenreSuperhero):   GenreSuperhero,
	string(GenreThriller):    GenreThriller,
	string(GenreOther):       GenreOther,
}

// ParseGenre maps a string onto the closed genre enumeration.
func ParseGenre(s string) (Genre, error) {
	if genre, ok := genres[s]; ok {
		return genre, nil
	}
	return GenreOther, NewErrorBadRequest("invalid genre: " + s)
}
