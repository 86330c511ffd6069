package http

import (
	"time"

	"typeroo-api/internal/domain"
)

type userResponse struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email,omitempty"`
	Bio                string   `json:"bio"`
	AvatarURL          string   `json:"avatarUrl"`
	DisplayName        string   `json:"displayName"`
	ThemePreference    string   `json:"themePreference"`
	TotalTests         int64    `json:"totalTests"`
	LastUsernameUpdate *string  `json:"lastUsernameUpdate"`
	Roles              []string `json:"roles"`
	CreatedAt          string   `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Bio:             u.Bio,
		AvatarURL:       u.AvatarURL,
		DisplayName:     u.DisplayName,
		ThemePreference: u.ThemePreference,
		TotalTests:      u.TotalTests,
		Roles:           u.Roles,
		CreatedAt:       formatTime(u.CreatedAt),
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	if u.LastUsernameUpdate != nil {
		ts := formatTime(*u.LastUsernameUpdate)
		resp.LastUsernameUpdate = &ts
	}
	return resp
}

type updateProfileRequest struct {
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatarUrl"`
	DisplayName *string `json:"displayName"`
}

type updateSettingsRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	CurrentPassword *string `json:"currentPassword"`
	ThemePreference *string `json:"themePreference"`
}

type customTextRequest struct {
	Content  string `json:"content"`
	IsPublic bool   `json:"isPublic"`
}

type customTextResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Content   string `json:"content"`
	IsPublic  bool   `json:"isPublic"`
	CreatedAt string `json:"createdAt"`
}

func toCustomTextResponse(t domain.CustomText) customTextResponse {
	return customTextResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Content:   t.Content,
		IsPublic:  t.IsPublic,
		CreatedAt: formatTime(t.CreatedAt),
	}
}

type saveResultRequest struct {
	WPM            float64 `json:"wpm"`
	RawWPM         float64 `json:"rawWpm"`
	Accuracy       float64 `json:"accuracy"`
	Duration       int     `json:"duration"`
	CorrectChars   int     `json:"correctChars"`
	IncorrectChars int     `json:"incorrectChars"`
}

type testResultResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	WPM            float64 `json:"wpm"`
	RawWPM         float64 `json:"rawWpm"`
	Accuracy       float64 `json:"accuracy"`
	Duration       int     `json:"duration"`
	CorrectChars   int     `json:"correctChars"`
	IncorrectChars int     `json:"incorrectChars"`
	Timestamp      string  `json:"timestamp"`
}

func toTestResultResponse(r domain.TestResult) testResultResponse {
	return testResultResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		Username:       r.Username,
		WPM:            r.WPM,
		RawWPM:         r.RawWPM,
		Accuracy:       r.Accuracy,
		Duration:       r.Duration,
		CorrectChars:   r.CorrectChars,
		IncorrectChars: r.IncorrectChars,
		Timestamp:      formatTime(r.Timestamp),
	}
}

// pageResponse mirrors the page envelope the web client already consumes.
type pageResponse struct {
	Content          []testResultResponse `json:"content"`
	Number           int                  `json:"number"`
	Size             int                  `json:"size"`
	NumberOfElements int                  `json:"numberOfElements"`
	TotalElements    int64                `json:"totalElements"`
	TotalPages       int                  `json:"totalPages"`
	First            bool                 `json:"first"`
	Last             bool                 `json:"last"`
	Empty            bool                 `json:"empty"`
}

func toPageResponse(p domain.ResultPage) pageResponse {
	content := make([]testResultResponse, 0, len(p.Results))
	for _, r := range p.Results {
		content = append(content, toTestResultResponse(r))
	}
	total := p.TotalPages()
	return pageResponse{
		Content:          content,
		Number:           p.Page,
		Size:             p.Size,
		NumberOfElements: len(content),
		TotalElements:    p.TotalElements,
		TotalPages:       total,
		First:            p.Page == 0,
		Last:             p.Page >= total-1,
		Empty:            len(content) == 0,
	}
}

type statsResponse struct {
	MaxWPM10 float64 `json:"maxWpm10"`
	MaxWPM30 float64 `json:"maxWpm30"`
	MaxWPM60 float64 `json:"maxWpm60"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
