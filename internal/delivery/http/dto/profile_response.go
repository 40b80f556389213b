package dto

import (
	"time"

	"github.com/google/uuid"

	"devlink/internal/domain/profile"
	profileuc "devlink/internal/usecase/profile"
)

type ProfileResponse struct {
	ID             uuid.UUID            `json:"id"`
	User           OwnerResponse        `json:"user"`
	Company        string               `json:"company,omitempty"`
	Website        string               `json:"website,omitempty"`
	Location       string               `json:"location,omitempty"`
	Status         string               `json:"status"`
	Skills         []string             `json:"skills"`
	Bio            string               `json:"bio,omitempty"`
	GithubUsername string               `json:"githubusername,omitempty"`
	Social         *SocialResponse      `json:"social,omitempty"`
	Experience     []ExperienceResponse `json:"experience"`
	Education      []EducationResponse  `json:"education"`
	CreatedAt      time.Time            `json:"date"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type SocialResponse struct {
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

type ExperienceResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type EducationResponse struct {
	ID           uuid.UUID  `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

func NewProfileResponse(v profileuc.View) ProfileResponse {
	p := v.Profile
	res := ProfileResponse{
		ID:             p.ID,
		User:           OwnerResponse{ID: v.Owner.ID, Name: v.Owner.Name, Avatar: v.Owner.Avatar},
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         p.Skills,
		Bio:            p.Bio,
		GithubUsername: p.GithubUsername,
		Experience:     make([]ExperienceResponse, 0, len(p.Experience)),
		Education:      make([]EducationResponse, 0, len(p.Education)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if res.Skills == nil {
		res.Skills = []string{}
	}
	if !p.Social.IsZero() {
		res.Social = &SocialResponse{
			Twitter:   p.Social.Twitter,
			Facebook:  p.Social.Facebook,
			Instagram: p.Social.Instagram,
			LinkedIn:  p.Social.LinkedIn,
		}
	}
	for _, e := range p.Experience {
		res.Experience = append(res.Experience, newExperienceResponse(e))
	}
	for _, e := range p.Education {
		res.Education = append(res.Education, newEducationResponse(e))
	}
	return res
}

func NewProfileListResponse(views []profileuc.View) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewProfileResponse(v))
	}
	return out
}

func newExperienceResponse(e profile.Experience) ExperienceResponse {
	return ExperienceResponse{
		ID: e.ID, Title: e.Title, Company: e.Company, Location: e.Location,
		From: e.From, To: e.To, Current: e.Current, Description: e.Description,
	}
}

func newEducationResponse(e profile.Education) EducationResponse {
	return EducationResponse{
		ID: e.ID, School: e.School, Degree: e.Degree, FieldOfStudy: e.FieldOfStudy,
		From: e.From, To: e.To, Current: e.Current, Description: e.Description,
	}
}
