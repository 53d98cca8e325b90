package model

// ResumeType names which of the two supplied résumés the model picked.
type ResumeType string

const (
	ResumeSoftware ResumeType = "software"
	ResumeCore     ResumeType = "core"
)

// ResumeOptimization is the validated output of the résumé synthesis use case.
type ResumeOptimization struct {
	SelectedResumeType ResumeType    `json:"selectedResumeType"`
	Content            ResumeProfile `json:"content"`

	// UngroundedSkills lists skills that could not be found in the selected source text.
	// It is filled by the caller-side grounding check, never by the model.
	UngroundedSkills []string `json:"ungroundedSkills,omitempty"`
}

// ResumeProfile is the rewritten résumé.
type ResumeProfile struct {
	FullName    string             `json:"fullName"`
	Title       string             `json:"title"`
	ContactInfo string             `json:"contactInfo"`
	Summary     string             `json:"summary"`
	Skills      []string           `json:"skills"`
	Experience  []ExperienceRecord `json:"experience"`
	Projects    []ProjectRecord    `json:"projects"`
	Education   []EducationRecord  `json:"education"`
}

type ExperienceRecord struct {
	Role     string   `json:"role"`
	Company  string   `json:"company"`
	Duration string   `json:"duration"`
	Points   []string `json:"points"`
}

type ProjectRecord struct {
	Name        string `json:"name"`
	TechStack   string `json:"techStack"`
	Description string `json:"description"`
}

type EducationRecord struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}
