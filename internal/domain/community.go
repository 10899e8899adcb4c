package domain

type PostID string

type ReactionKind string

const (
	ReactionHeart  ReactionKind = "heart"
	ReactionHug    ReactionKind = "hug"
	ReactionFlower ReactionKind = "flower"
)

// ParseReactionKind accepts only the three supported reactions.
func ParseReactionKind(s string) (ReactionKind, bool) {
	switch ReactionKind(s) {
	case ReactionHeart, ReactionHug, ReactionFlower:
		return ReactionKind(s), true
	}
	return "", false
}

type Reactions struct {
	Heart  int `json:"heart"`
	Hug    int `json:"hug"`
	Flower int `json:"flower"`
}

// Inc bumps the counter for kind. Callers hold whatever lock guards r.
func (r *Reactions) Inc(kind ReactionKind) {
	switch kind {
	case ReactionHeart:
		r.Heart++
	case ReactionHug:
		r.Hug++
	case ReactionFlower:
		r.Flower++
	}
}

// CommunityPost is an anonymous post shown in the community feed.
type CommunityPost struct {
	ID        PostID
	UserID    UserID
	Name      string // pseudonym, never the user id
	Message   string
	Timestamp Timestamp
	Reactions Reactions
}
