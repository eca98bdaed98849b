package advisor

import (
	"fmt"
	"strings"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

const systemPrompt = `You are a career advisor for university students looking for internships, part-time and full-time work.
Answer in plain text, be concrete and keep the answer under 300 words.`

func generalQuestionPrompt(session model.Session, question string) string {
	var b strings.Builder
	if session.DisplayName != "" {
		fmt.Fprintf(&b, "The student %s asks:\n", session.DisplayName)
	} else {
		b.WriteString("A student asks:\n")
	}
	b.WriteString(question)
	return b.String()
}

func jobRecommendationPrompt(c Context) string {
	var b strings.Builder
	writeStudent(&b, c)
	b.WriteString("\nOpen jobs:\n")
	if len(c.Jobs) == 0 {
		b.WriteString("- none are open right now\n")
	}
	for _, j := range c.Jobs {
		fmt.Fprintf(&b, "- [%d] %s at %s (%s, %s)", j.ID, j.Title, j.Company.Name, j.JobType, orDash(j.Location))
		if len(j.Requirements) > 0 {
			fmt.Fprintf(&b, " requires: %s", strings.Join(j.Requirements, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nRecommend up to three of these jobs that fit the student best and explain why. ")
	b.WriteString("If none fit, say what the student should build first.")
	return b.String()
}

func portfolioImprovementPrompt(c Context) string {
	var b strings.Builder
	writeStudent(&b, c)
	if len(c.Jobs) > 0 {
		b.WriteString("\nEmployers are currently hiring for:\n")
		for _, j := range c.Jobs {
			fmt.Fprintf(&b, "- %s (%s)\n", j.Title, j.JobType)
		}
	}
	b.WriteString("\nSuggest the most valuable improvements to this portfolio, ordered by impact.")
	return b.String()
}

func writeStudent(b *strings.Builder, c Context) {
	name := c.Profile.DisplayName
	if name == "" {
		name = c.Profile.Username
	}
	fmt.Fprintf(b, "Student: %s\n", name)
	if c.Profile.Faculty != "" || c.Profile.Major != "" {
		fmt.Fprintf(b, "Studies: %s %s\n", c.Profile.Faculty, c.Profile.Major)
	}

	p := c.Portfolio
	if p == nil {
		b.WriteString("The student has no approved portfolio yet.\n")
		return
	}

	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		if s.Level != "" {
			skills = append(skills, fmt.Sprintf("%s (%s)", s.Name, s.Level))
		} else {
			skills = append(skills, s.Name)
		}
	}
	fmt.Fprintf(b, "Skills: %s\n", orDash(strings.Join(skills, ", ")))

	for _, pr := range p.Projects {
		fmt.Fprintf(b, "Project: %s", pr.Title)
		if len(pr.Technologies) > 0 {
			fmt.Fprintf(b, " [%s]", strings.Join(pr.Technologies, ", "))
		}
		if pr.Description != "" {
			fmt.Fprintf(b, ": %s", pr.Description)
		}
		b.WriteString("\n")
	}
	for _, e := range p.Education {
		fmt.Fprintf(b, "Education: %s %s %s\n", e.Degree, e.Field, e.Institution)
	}
	for _, cert := range p.Certificates {
		fmt.Fprintf(b, "Certificate: %s\n", cert.Name)
	}
	langs := make([]string, 0, len(p.Languages))
	for _, l := range p.Languages {
		langs = append(langs, strings.TrimSpace(l.Name+" "+l.Proficiency))
	}
	if len(langs) > 0 {
		fmt.Fprintf(b, "Languages: %s\n", strings.Join(langs, ", "))
	}
	fmt.Fprintf(b, "Availability: %s\n", orDash(p.Availability))
	if p.ExpectedRate != nil {
		fmt.Fprintf(b, "Expected rate: %.2f\n", *p.ExpectedRate)
	}
	if p.ResumeText != "" {
		fmt.Fprintf(b, "Resume excerpt: %s\n", p.ResumeText)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
