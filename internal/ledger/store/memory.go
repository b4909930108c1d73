package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"mandate/internal/ledger/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
)

// InMemory backs the ledger with maps under a single mutex. The conditional
// writes (link, answer) check and mutate under the lock, matching the
// atomicity of the SQL conditional updates.
type InMemory struct {
	mu       sync.RWMutex
	promises map[id.PromiseID]*models.Promise
	projects map[id.ProjectID]*models.Project
	updates  map[id.ProjectID][]*models.ProjectUpdate
	question map[id.QuestionID]*models.Question
}

func NewInMemory() *InMemory {
	return &InMemory{
		promises: make(map[id.PromiseID]*models.Promise),
		projects: make(map[id.ProjectID]*models.Project),
		updates:  make(map[id.ProjectID][]*models.ProjectUpdate),
		question: make(map[id.QuestionID]*models.Question),
	}
}

// Promises implements PromiseStore over the shared maps.
func (s *InMemory) Promises() PromiseStore { return (*memoryPromises)(s) }

// Projects implements ProjectStore over the shared maps.
func (s *InMemory) Projects() ProjectStore { return (*memoryProjects)(s) }

// Questions implements QuestionStore over the shared maps.
func (s *InMemory) Questions() QuestionStore { return (*memoryQuestions)(s) }

type memoryPromises InMemory

func (s *memoryPromises) Create(_ context.Context, promise *models.Promise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *promise
	s.promises[promise.ID] = &copied
	return nil
}

func (s *memoryPromises) FindByID(_ context.Context, promiseID id.PromiseID) (*models.Promise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if promise, ok := s.promises[promiseID]; ok {
		copied := *promise
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *memoryPromises) ListByClaim(_ context.Context, claimID id.ClaimID) ([]*models.Promise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []*models.Promise
	for _, promise := range s.promises {
		if promise.ClaimID == claimID {
			copied := *promise
			results = append(results, &copied)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (s *memoryPromises) Update(_ context.Context, promise *models.Promise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promises[promise.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *promise
	s.promises[promise.ID] = &copied
	return nil
}

type memoryProjects InMemory

func (s *memoryProjects) Create(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *project
	s.projects[project.ID] = &copied
	return nil
}

func (s *memoryProjects) FindByID(_ context.Context, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if project, ok := s.projects[projectID]; ok {
		copied := *project
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *memoryProjects) ListByClaim(_ context.Context, claimID id.ClaimID) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []*models.Project
	for _, project := range s.projects {
		if project.ClaimID != nil && *project.ClaimID == claimID {
			copied := *project
			results = append(results, &copied)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (s *memoryProjects) LinkIfUnowned(_ context.Context, projectID id.ProjectID, claimID id.ClaimID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[projectID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if project.ClaimID != nil {
		return sentinel.ErrAlreadyOwned
	}
	linked := claimID
	project.ClaimID = &linked
	return nil
}

func (s *memoryProjects) Update(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *project
	s.projects[project.ID] = &copied
	return nil
}

func (s *memoryProjects) AppendUpdate(_ context.Context, update *models.ProjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *update
	s.updates[update.ProjectID] = append(s.updates[update.ProjectID], &copied)
	return nil
}

func (s *memoryProjects) ListUpdates(_ context.Context, projectID id.ProjectID) ([]*models.ProjectUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	updates := s.updates[projectID]
	results := make([]*models.ProjectUpdate, 0, len(updates))
	for _, update := range updates {
		copied := *update
		results = append(results, &copied)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

type memoryQuestions InMemory

func (s *memoryQuestions) Create(_ context.Context, question *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *question
	s.question[question.ID] = &copied
	return nil
}

func (s *memoryQuestions) FindByID(_ context.Context, questionID id.QuestionID) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if question, ok := s.question[questionID]; ok {
		copied := *question
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *memoryQuestions) ListByClaim(_ context.Context, claimID id.ClaimID) ([]*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []*models.Question
	for _, question := range s.question {
		if question.ClaimID == claimID {
			copied := *question
			results = append(results, &copied)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.Upvotes != b.Upvotes {
			return a.Upvotes > b.Upvotes
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return results, nil
}

func (s *memoryQuestions) SetAnswerIfUnanswered(_ context.Context, questionID id.QuestionID, answer string, answeredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.question[questionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if question.AnsweredAt != nil {
		return sentinel.ErrInvalidState
	}
	stamped := answeredAt
	question.Answer = answer
	question.AnsweredAt = &stamped
	return nil
}

func (s *memoryQuestions) IncrementUpvotes(_ context.Context, questionID id.QuestionID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.question[questionID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	question.Upvotes++
	return question.Upvotes, nil
}

func (s *memoryQuestions) SetPinned(_ context.Context, questionID id.QuestionID, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.question[questionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	question.IsPinned = pinned
	return nil
}
