package service

import (
	"ai-workbench/internal/model"
	"ai-workbench/internal/schema"
)

// ResumeSchema is the output contract of résumé synthesis.
func ResumeSchema() *schema.Node {
	str := func(desc string) *schema.Node { return schema.String(desc) }
	return schema.Object(
		schema.Prop("selectedResumeType", schema.Enum(
			"Which source résumé was used: software or core.",
			string(model.ResumeSoftware), string(model.ResumeCore),
		)),
		schema.Prop("content", schema.Object(
			schema.Prop("fullName", str("Candidate name exactly as written in the source.")),
			schema.Prop("title", str("Professional title aligned with the job.")),
			schema.Prop("contactInfo", str("Contact details from the source, one line.")),
			schema.Prop("summary", str("Professional profile rewritten for the job.")),
			schema.Prop("skills", schema.List(str("A skill present in the source."))),
			schema.Prop("experience", schema.List(schema.Object(
				schema.Prop("role", str("")),
				schema.Prop("company", str("")),
				schema.Prop("duration", str("")),
				schema.Prop("points", schema.List(str("Achievement bullet."))),
			))),
			schema.Prop("projects", schema.List(schema.Object(
				schema.Prop("name", str("")),
				schema.Prop("techStack", str("")),
				schema.Prop("description", str("")),
			))),
			schema.Prop("education", schema.List(schema.Object(
				schema.Prop("degree", str("")),
				schema.Prop("institution", str("")),
				schema.Prop("year", str("")),
			))),
		)),
	)
}
