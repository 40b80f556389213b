package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"devlink/internal/domain/profile"
)

type socialRecord struct {
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

type experienceRecord struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type educationRecord struct {
	ID           uuid.UUID  `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

func toSocialRecord(s profile.Social) socialRecord {
	return socialRecord{Twitter: s.Twitter, Facebook: s.Facebook, Instagram: s.Instagram, LinkedIn: s.LinkedIn}
}

func toExperienceRecords(in []profile.Experience) []experienceRecord {
	out := make([]experienceRecord, 0, len(in))
	for _, e := range in {
		out = append(out, experienceRecord{
			ID: e.ID, Title: e.Title, Company: e.Company, Location: e.Location,
			From: e.From, To: e.To, Current: e.Current, Description: e.Description,
		})
	}
	return out
}

func toEducationRecords(in []profile.Education) []educationRecord {
	out := make([]educationRecord, 0, len(in))
	for _, e := range in {
		out = append(out, educationRecord{
			ID: e.ID, School: e.School, Degree: e.Degree, FieldOfStudy: e.FieldOfStudy,
			From: e.From, To: e.To, Current: e.Current, Description: e.Description,
		})
	}
	return out
}

func decodeAggregate(p *profile.Profile, social, exp, edu []byte) error {
	if len(social) > 0 {
		var s socialRecord
		if err := json.Unmarshal(social, &s); err != nil {
			return fmt.Errorf("decode social: %w", err)
		}
		p.Social = profile.Social{Twitter: s.Twitter, Facebook: s.Facebook, Instagram: s.Instagram, LinkedIn: s.LinkedIn}
	}

	if len(exp) > 0 {
		var recs []experienceRecord
		if err := json.Unmarshal(exp, &recs); err != nil {
			return fmt.Errorf("decode experience: %w", err)
		}
		p.Experience = make([]profile.Experience, 0, len(recs))
		for _, r := range recs {
			p.Experience = append(p.Experience, profile.Experience{
				ID: r.ID, Title: r.Title, Company: r.Company, Location: r.Location,
				From: r.From, To: r.To, Current: r.Current, Description: r.Description,
			})
		}
	}

	if len(edu) > 0 {
		var recs []educationRecord
		if err := json.Unmarshal(edu, &recs); err != nil {
			return fmt.Errorf("decode education: %w", err)
		}
		p.Education = make([]profile.Education, 0, len(recs))
		for _, r := range recs {
			p.Education = append(p.Education, profile.Education{
				ID: r.ID, School: r.School, Degree: r.Degree, FieldOfStudy: r.FieldOfStudy,
				From: r.From, To: r.To, Current: r.Current, Description: r.Description,
			})
		}
	}
	return nil
}
