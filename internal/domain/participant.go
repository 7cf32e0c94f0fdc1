package domain

type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

func (k MediaKind) Valid() bool {
	return k == MediaAudio || k == MediaVideo
}

type MediaTrack struct {
	Enabled bool `json:"enabled"`
}

type MediaDevices struct {
	Audio MediaTrack `json:"audio"`
	Video MediaTrack `json:"video"`
}

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length"`
}

// Movement holds the four directional key states as last reported by the
// client. The tick loop folds them into a displacement.
type Movement struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Up    bool `json:"up"`
	Down  bool `json:"down"`
}

func (m Movement) Any() bool {
	return m.Left || m.Right || m.Up || m.Down
}

// Participant is a user's state inside one room. Rotation is kept in
// degrees; conversion to radians happens only at the trig call sites.
type Participant struct {
	UserID   UserID       `json:"userId"`
	Media    MediaDevices `json:"media"`
	Position Vector3      `json:"position"`
	Size     Size         `json:"size"`
	Movement Movement     `json:"movement"`
	Velocity Vector3      `json:"velocity"`
	Rotation Vector3      `json:"rotation"`
}
