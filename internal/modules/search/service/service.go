package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/workbridge-app/workbridge/internal/entity"
	searchDto "github.com/workbridge-app/workbridge/internal/modules/search/dto"
	"github.com/workbridge-app/workbridge/internal/modules/search/repository"
)

const (
	SearchTypeJobs        = "jobs"
	SearchTypeFreelancers = "freelancers"

	defaultLimit = 20
)

// Service answers keyword searches over open jobs and freelancer profiles
// and keeps the Meilisearch indexes in sync with the store. When no
// Meilisearch client is configured, searches fall back to the database
// repository; index maintenance becomes a no-op.
type Service interface {
	Search(ctx context.Context, query searchDto.SearchQuery) (*searchDto.SearchResponse, error)
	IndexJob(job *entity.Job) error
	RemoveJob(id uuid.UUID) error
	IndexFreelancer(user *entity.User) error
	RemoveFreelancer(id uuid.UUID) error
}

type service struct {
	client    meilisearch.ServiceManager
	repo      repository.SearchRepository
	sanitizer *bluemonday.Policy
}

func NewService(client meilisearch.ServiceManager, repo repository.SearchRepository) Service {
	s := &service{
		client:    client,
		repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
	}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *service) initIndexes() {
	jobFilterable := []any{"is_open"}
	if _, err := s.client.Index("jobs").UpdateFilterableAttributes(&jobFilterable); err != nil {
		log.Printf("Failed to update jobs filterable attributes: %v", err)
	}

	jobSortable := []string{"created_at", "budget"}
	if _, err := s.client.Index("jobs").UpdateSortableAttributes(&jobSortable); err != nil {
		log.Printf("Failed to update jobs sortable attributes: %v", err)
	}

	freelancerSortable := []string{"hourly_rate"}
	if _, err := s.client.Index("freelancers").UpdateSortableAttributes(&freelancerSortable); err != nil {
		log.Printf("Failed to update freelancers sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

// Structs for Meilisearch indexing
type meiliJobDoc struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Budget         float64 `json:"budget"`
	SkillsRequired string  `json:"skills_required"`
	IsOpen         bool    `json:"is_open"`
	ClientUsername string  `json:"client_username"`
	CreatedAt      int64   `json:"created_at"`
}

type meiliFreelancerDoc struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	FullName   string   `json:"full_name"`
	Title      string   `json:"title"`
	Bio        string   `json:"bio"`
	Skills     string   `json:"skills"`
	Location   string   `json:"location"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	AvatarURL  string   `json:"avatar_url"`
}

func (s *service) cleanContentForIndex(content string) string {
	// Replace block tags with spaces to prevent text merging
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *service) IndexJob(job *entity.Job) error {
	if s.client == nil {
		return nil
	}

	doc := meiliJobDoc{
		ID:             job.ID.String(),
		Title:          job.Title,
		Description:    s.cleanContentForIndex(job.Description),
		Budget:         job.Budget,
		SkillsRequired: job.SkillsRequired,
		IsOpen:         job.IsOpen,
		ClientUsername: job.Client.Username,
		CreatedAt:      job.CreatedAt.Unix(),
	}

	task, err := s.client.Index("jobs").AddDocuments([]meiliJobDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed job %s, task id: %d", job.ID, task.TaskUID)
	return nil
}

func (s *service) RemoveJob(id uuid.UUID) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index("jobs").DeleteDocument(id.String())
	return err
}

func (s *service) IndexFreelancer(user *entity.User) error {
	if s.client == nil {
		return nil
	}
	if user.Profile == nil {
		return fmt.Errorf("freelancer profile not loaded")
	}

	doc := meiliFreelancerDoc{
		ID:         user.ID.String(),
		Username:   user.Username,
		FullName:   user.Profile.FullName,
		Title:      getStringOrEmpty(user.Profile.Title),
		Bio:        s.cleanContentForIndex(getStringOrEmpty(user.Profile.Bio)),
		Skills:     getStringOrEmpty(user.Profile.Skills),
		Location:   getStringOrEmpty(user.Profile.Location),
		HourlyRate: user.Profile.HourlyRate,
		AvatarURL:  getStringOrEmpty(user.AvatarURL),
	}

	task, err := s.client.Index("freelancers").AddDocuments([]meiliFreelancerDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed freelancer %s, task id: %d", user.ID, task.TaskUID)
	return nil
}

func (s *service) RemoveFreelancer(id uuid.UUID) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index("freelancers").DeleteDocument(id.String())
	return err
}

func (s *service) Search(ctx context.Context, query searchDto.SearchQuery) (*searchDto.SearchResponse, error) {
	searchType := query.SearchType
	if searchType == "" {
		searchType = SearchTypeJobs
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	resp := &searchDto.SearchResponse{
		Query:      query.Q,
		SearchType: searchType,
	}

	switch searchType {
	case SearchTypeFreelancers:
		results, err := s.searchFreelancers(ctx, query.Q, limit)
		if err != nil {
			return nil, err
		}
		resp.Freelancers = results
	default:
		results, err := s.searchJobs(ctx, query.Q, limit)
		if err != nil {
			return nil, err
		}
		resp.Jobs = results
	}

	return resp, nil
}

func (s *service) searchJobs(ctx context.Context, q string, limit int) ([]searchDto.JobResult, error) {
	if s.client != nil {
		res, err := s.client.Index("jobs").Search(q, &meilisearch.SearchRequest{
			Limit:  int64(limit),
			Filter: "is_open = true",
		})
		if err == nil {
			return decodeJobHits(res.Hits), nil
		}
		log.Printf("Meilisearch job query failed, falling back to database: %v", err)
	}

	jobs, err := s.repo.SearchOpenJobs(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	results := make([]searchDto.JobResult, 0, len(jobs))
	for _, job := range jobs {
		results = append(results, searchDto.JobResult{
			ID:             job.ID.String(),
			Title:          job.Title,
			Description:    job.Description,
			Budget:         job.Budget,
			SkillsRequired: job.SkillsRequired,
			ClientUsername: job.Client.Username,
			CreatedAt:      job.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return results, nil
}

func (s *service) searchFreelancers(ctx context.Context, q string, limit int) ([]searchDto.FreelancerResult, error) {
	if s.client != nil {
		res, err := s.client.Index("freelancers").Search(q, &meilisearch.SearchRequest{
			Limit: int64(limit),
		})
		if err == nil {
			return decodeFreelancerHits(res.Hits), nil
		}
		log.Printf("Meilisearch freelancer query failed, falling back to database: %v", err)
	}

	users, err := s.repo.SearchFreelancers(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	results := make([]searchDto.FreelancerResult, 0, len(users))
	for _, user := range users {
		result := searchDto.FreelancerResult{
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
		}
		if user.Profile != nil {
			result.FullName = user.Profile.FullName
			result.Title = user.Profile.Title
			result.Bio = user.Profile.Bio
			result.Skills = user.Profile.Skills
			result.Location = user.Profile.Location
			result.HourlyRate = user.Profile.HourlyRate
		}
		results = append(results, result)
	}
	return results, nil
}

// decodeHits round-trips Meilisearch hits through JSON into typed documents.
func decodeHits[T any](hits any) []T {
	var docs []T
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil
	}
	return docs
}

func decodeJobHits(hits any) []searchDto.JobResult {
	docs := decodeHits[meiliJobDoc](hits)
	results := make([]searchDto.JobResult, 0, len(docs))
	for _, doc := range docs {
		result := searchDto.JobResult{
			ID:             doc.ID,
			Title:          doc.Title,
			Description:    doc.Description,
			Budget:         doc.Budget,
			SkillsRequired: doc.SkillsRequired,
			ClientUsername: doc.ClientUsername,
		}
		if doc.CreatedAt > 0 {
			result.CreatedAt = time.Unix(doc.CreatedAt, 0).UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		results = append(results, result)
	}
	return results
}

func decodeFreelancerHits(hits any) []searchDto.FreelancerResult {
	docs := decodeHits[meiliFreelancerDoc](hits)
	results := make([]searchDto.FreelancerResult, 0, len(docs))
	for _, doc := range docs {
		result := searchDto.FreelancerResult{
			Username:   doc.Username,
			FullName:   doc.FullName,
			HourlyRate: doc.HourlyRate,
		}
		if doc.Title != "" {
			result.Title = strPtr(doc.Title)
		}
		if doc.Bio != "" {
			result.Bio = strPtr(doc.Bio)
		}
		if doc.Skills != "" {
			result.Skills = strPtr(doc.Skills)
		}
		if doc.Location != "" {
			result.Location = strPtr(doc.Location)
		}
		if doc.AvatarURL != "" {
			result.AvatarURL = strPtr(doc.AvatarURL)
		}
		results = append(results, result)
	}
	return results
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
