package core

import (
	"time"

	"github.com/tidwall/gjson"
)

// Identity is the caller resolved from /user/profile/me. The backend answers either with a bare
// user id or with a profile object.
type Identity struct {
	ID int64 `json:"id"`
}

func (i *Identity) UnmarshalJSON(b []byte) error {
	res := gjson.ParseBytes(b)
	switch {
	case res.Type == gjson.Number:
		i.ID = res.Int()
	case res.IsObject():
		i.ID = res.Get("id").Int()
	default:
		i.ID = 0
	}
	return nil
}

// UserSummary is the short user projection used in friend lists, members, organizers and search.
type UserSummary struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Profile is a user profile. Other users' profiles carry only public fields plus
// FriendshipStatus.
type Profile struct {
	ID               int64    `json:"id,omitempty"`
	Email            string   `json:"email,omitempty"`
	PhoneNumber      string   `json:"phone_number,omitempty"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Bio              string   `json:"bio,omitempty"`
	City             string   `json:"city,omitempty"`
	Birthday         string   `json:"birthday,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	AvatarURL        string   `json:"avatar_url,omitempty"`
	IsPrivate        bool     `json:"is_private,omitempty"`
	FriendsCount     int      `json:"friends_count"`
	FriendshipStatus string   `json:"friendship_status,omitempty"` // not_in_friends|in_friends|application_received|application_sent
}

// ProfileUpdate carries only the fields to change.
type ProfileUpdate struct {
	Email       *string  `json:"email,omitempty"`
	PhoneNumber *string  `json:"phone_number,omitempty"`
	FirstName   *string  `json:"first_name,omitempty"`
	LastName    *string  `json:"last_name,omitempty"`
	Bio         *string  `json:"bio,omitempty"`
	City        *string  `json:"city,omitempty"`
	Birthday    *string  `json:"birthday,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	AvatarURL   *string  `json:"avatar_url,omitempty"`
	IsPrivate   *bool    `json:"is_private,omitempty"`
}

type FriendList struct {
	Friends []UserSummary `json:"friends"`
}

type FriendRequests struct {
	Pending []UserSummary `json:"pending_requests"`
}

type Event struct {
	ID                  int64         `json:"id,omitempty"`
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	Location            string        `json:"location,omitempty"`
	Start               string        `json:"start,omitempty"`
	End                 string        `json:"end,omitempty"`
	StartTimestamptz    string        `json:"start_timestamptz,omitempty"`
	EndTimestamptz      string        `json:"end_timestamptz,omitempty"`
	Tags                []string      `json:"tags,omitempty"`
	Organizer           *UserSummary  `json:"organizer,omitempty"`
	ParticipantsCount   int           `json:"participants_count,omitempty"`
	CreatedAt           string        `json:"created_at,omitempty"`
	ImageURL            string        `json:"image_url,omitempty"`
	Image               string        `json:"image,omitempty"`
	FriendsParticipants []UserSummary `json:"friends_participants,omitempty"`
}

// EventFilter selects the feed served by /events/filter.
type EventFilter string

const (
	FilterRecommendations EventFilter = "recommendations"
	FilterFriends         EventFilter = "friends"
	FilterGroups          EventFilter = "groups"
)

type EventsPage struct {
	Msg    string  `json:"msg,omitempty"`
	Events []Event `json:"events"`
}

type EventCreate struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start_timestamptz"`
	End         time.Time `json:"end_timestamptz"`
	Tags        []string  `json:"tags"`
	ByGroup     bool      `json:"by_group"`
}

// EventUpdate carries only the fields to change.
type EventUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Start       *time.Time `json:"start_timestamptz,omitempty"`
	End         *time.Time `json:"end_timestamptz,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

type CreatedEvent struct {
	Msg     string `json:"msg"`
	EventID int64  `json:"event_id"`
}

type Group struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Location     string        `json:"location,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	AvatarURL    string        `json:"avatar_url,omitempty"`
	IsPrivate    bool          `json:"is_private,omitempty"`
	CreatorID    int64         `json:"creator_id,omitempty"`
	CreatedAt    string        `json:"created_at,omitempty"`
	Creator      *UserSummary  `json:"creator,omitempty"`
	MembersCount int           `json:"members_count,omitempty"`
	EventsCount  int           `json:"events_count,omitempty"`
	Status       *string       `json:"status,omitempty"` // creator|admin|member, nil when not a member
	Admins       []UserSummary `json:"admins,omitempty"`
}

type GroupCreate struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Location    string   `json:"location,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
}

type GroupUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	AvatarURL   *string  `json:"avatar_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsPrivate   *bool    `json:"is_private,omitempty"`
}

type CreatedGroup struct {
	Msg     string `json:"msg"`
	GroupID int64  `json:"group_id"`
}

type Member struct {
	UserID    int64  `json:"user_id"`
	IsAdmin   bool   `json:"is_admin"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type InviteLink struct {
	Link  string `json:"link,omitempty"`
	Token string `json:"token,omitempty"`
}

// Invitation describes the group behind an invite token.
type Invitation struct {
	GroupID   int64  `json:"group_id,omitempty"`
	GroupName string `json:"group_name,omitempty"`
	Group     *Group `json:"group,omitempty"`
}

// Message is the generic {"msg": "..."} acknowledgement.
type Message struct {
	Msg string `json:"msg"`
}

// Uploaded is returned by the image and avatar upload endpoints.
type Uploaded struct {
	Message   string `json:"message,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
