package profile

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Company        string
	Website        string
	Status         string
	Location       string
	Bio            string
	GithubUsername string
	Skills         []string
	Social         Social
	Experience     []Experience
	Education      []Education
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Social holds the recognized social links. Empty values mean the link is absent.
type Social struct {
	Twitter   string
	Facebook  string
	Instagram string
	LinkedIn  string
}

func (s Social) IsZero() bool {
	return s == Social{}
}

type Experience struct {
	ID          uuid.UUID
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

type Education struct {
	ID           uuid.UUID
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

// PrependExperience puts e at the head of the list, newest first.
func (p *Profile) PrependExperience(e Experience) {
	p.Experience = append([]Experience{e}, p.Experience...)
}

func (p *Profile) PrependEducation(e Education) {
	p.Education = append([]Education{e}, p.Education...)
}

// RemoveExperience drops the entry with the given id and reports whether one
// was found. An unknown id leaves the list untouched.
func (p *Profile) RemoveExperience(id uuid.UUID) bool {
	for i := range p.Experience {
		if p.Experience[i].ID == id {
			p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Profile) RemoveEducation(id uuid.UUID) bool {
	for i := range p.Education {
		if p.Education[i].ID == id {
			p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
			return true
		}
	}
	return false
}
