package services

import (
	"strings"
	"sync"

	"portal_backend/internal/email"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
)

// EmailService sends the application lifecycle notifications. Sends run in the
// background and failures are only logged.
type EmailService struct {
	provider  email.Provider
	publicURL string
	wg        sync.WaitGroup
}

func NewEmailService(provider email.Provider, publicURL string) *EmailService {
	return &EmailService{
		provider:  provider,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// NotifyApplicationReceived confirms a submitted application to the candidate.
func (s *EmailService) NotifyApplicationReceived(candidate *models.User, job *models.Job) {
	if candidate == nil || job == nil {
		return
	}
	s.sendAsync(candidate.Email, "Application received: "+job.Title, email.TemplateApplicationReceived, email.TemplateData{
		"CandidateName":    candidate.Name,
		"JobTitle":         job.Title,
		"OrganizationName": organizationName(job),
	})
}

// NotifyNewApplication tells the recruiter who posted the job about a new applicant.
func (s *EmailService) NotifyNewApplication(recruiter, candidate *models.User, job *models.Job, applicationID string) {
	if recruiter == nil || candidate == nil || job == nil {
		return
	}
	s.sendAsync(recruiter.Email, "New application: "+job.Title, email.TemplateNewApplication, email.TemplateData{
		"RecruiterName":  recruiter.Name,
		"CandidateName":  candidate.Name,
		"CandidateEmail": candidate.Email,
		"JobTitle":       job.Title,
		"ApplicationURL": s.publicURL + "/applications/" + applicationID,
	})
}

func (s *EmailService) NotifyStatusChanged(candidate *models.User, job *models.Job, status string) {
	if candidate == nil || job == nil {
		return
	}
	s.sendAsync(candidate.Email, "Update on your application: "+job.Title, email.TemplateStatusChanged, email.TemplateData{
		"CandidateName": candidate.Name,
		"JobTitle":      job.Title,
		"Status":        status,
	})
}

// Wait blocks until every queued notification has been attempted.
func (s *EmailService) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func (s *EmailService) sendAsync(to, subject, templateName string, data email.TemplateData) {
	if s == nil || s.provider == nil || to == "" {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.provider.SendTemplate([]string{to}, subject, templateName, data); err != nil {
			logger.Error("Failed to send notification email",
				"template", templateName,
				"to", to,
				"error", err)
		}
	}()
}

func organizationName(job *models.Job) string {
	if job.Organization != nil {
		return job.Organization.Name
	}
	return ""
}
