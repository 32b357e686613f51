package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/cases"

	"github.com/yukikurage/task-board/internal/models"
	"github.com/yukikurage/task-board/internal/repository"
)

// Advisor error codes.
const (
	AdvisorNotConfigured = "NOT_CONFIGURED"
	AdvisorInvalidInput  = "INVALID_INPUT"
	AdvisorUpstream      = "UPSTREAM_ERROR"
	AdvisorBadResponse   = "BAD_RESPONSE"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrEmptyDescription       = errors.New("task description is required")
	ErrEmptyRoster            = errors.New("no candidates to choose from")
)

// AdvisorError is the only error an Advisor returns.
type AdvisorError struct {
	Code string
	Err  error
}

func (e *AdvisorError) Error() string {
	return fmt.Sprintf("assignment advisor %s: %v", e.Code, e.Err)
}

func (e *AdvisorError) Unwrap() error {
	return e.Err
}

func advisorErr(code string, err error) *AdvisorError {
	return &AdvisorError{Code: code, Err: err}
}

// Candidate is one roster entry offered to an Advisor.
type Candidate struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Expertise string `json:"expertise"`
	Workload  int    `json:"current_workload"`
}

type SuggestInput struct {
	Description string      `json:"description"`
	Roster      []Candidate `json:"roster"`
}

type Suggestion struct {
	SuggestedAssignee string `json:"suggested_assignee"`
	UserID            string `json:"user_id"`
	Reason            string `json:"reason"`
}

// Advisor proposes an assignee for a task. Failures are *AdvisorError.
type Advisor interface {
	Suggest(ctx context.Context, input SuggestInput) (*Suggestion, error)
}

func checkInput(input SuggestInput) error {
	if strings.TrimSpace(input.Description) == "" {
		return advisorErr(AdvisorInvalidInput, ErrEmptyDescription)
	}
	if len(input.Roster) == 0 {
		return advisorErr(AdvisorInvalidInput, ErrEmptyRoster)
	}
	return nil
}

// OpenAIAdvisor asks a chat model to pick from the roster.
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
}

// NewOpenAIAdvisor builds an advisor. baseURL may be empty for the public API.
func NewOpenAIAdvisor(apiKey, model, baseURL string) *OpenAIAdvisor {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIAdvisor{client: openai.NewClientWithConfig(cfg), model: model}
}

const advisorPrompt = `You assign tasks to team members.

Task description:
%s

Team members (JSON):
%s

Pick exactly one member by name, weighing how their expertise fits the task against their current workload.
Reply with a JSON object only: {"suggested_assignee": "<name>", "reason": "<one sentence>"}`

func (a *OpenAIAdvisor) Suggest(ctx context.Context, input SuggestInput) (*Suggestion, error) {
	if a.client == nil {
		return nil, advisorErr(AdvisorNotConfigured, ErrAIServiceNotConfigured)
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}

	roster, err := json.Marshal(input.Roster)
	if err != nil {
		return nil, advisorErr(AdvisorInvalidInput, err)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(advisorPrompt, input.Description, roster),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.2,
	})
	if err != nil {
		return nil, advisorErr(AdvisorUpstream, fmt.Errorf("OpenAI API error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, advisorErr(AdvisorBadResponse, errors.New("no response from OpenAI"))
	}

	content := resp.Choices[0].Message.Content
	var out Suggestion
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, advisorErr(AdvisorBadResponse, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content))
	}

	match, ok := byName(input.Roster, out.SuggestedAssignee)
	if !ok {
		return nil, advisorErr(AdvisorBadResponse, fmt.Errorf("suggested assignee %q is not on the roster", out.SuggestedAssignee))
	}
	out.SuggestedAssignee = match.Name
	out.UserID = match.UserID
	return &out, nil
}

func byName(roster []Candidate, name string) (Candidate, bool) {
	want := cases.Fold().String(strings.TrimSpace(name))
	for _, c := range roster {
		if cases.Fold().String(c.Name) == want {
			return c, true
		}
	}
	return Candidate{}, false
}

// WorkloadAdvisor picks the least-loaded candidate, preferring expertise that
// shares words with the description, then roster order. It needs no network.
type WorkloadAdvisor struct{}

func (WorkloadAdvisor) Suggest(ctx context.Context, input SuggestInput) (*Suggestion, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	words := wordSet(input.Description)
	best, bestOverlap := 0, overlap(words, input.Roster[0].Expertise)
	for i := 1; i < len(input.Roster); i++ {
		c, o := input.Roster[i], overlap(words, input.Roster[i].Expertise)
		b := input.Roster[best]
		if c.Workload < b.Workload || (c.Workload == b.Workload && o > bestOverlap) {
			best, bestOverlap = i, o
		}
	}

	pick := input.Roster[best]
	reason := fmt.Sprintf("%s has the lightest workload (%d)", pick.Name, pick.Workload)
	if bestOverlap > 0 {
		reason += " and relevant expertise"
	}
	return &Suggestion{SuggestedAssignee: pick.Name, UserID: pick.UserID, Reason: reason}, nil
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(cases.Fold().String(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 0x7f)
	}) {
		if len(w) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

func overlap(words map[string]struct{}, expertise string) int {
	n := 0
	for w := range wordSet(expertise) {
		if _, ok := words[w]; ok {
			n++
		}
	}
	return n
}

// AssignmentService builds a team roster and asks the advisor for a pick.
type AssignmentService struct {
	advisor  Advisor
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

func NewAssignmentService(advisor Advisor, userRepo repository.UserRepository, taskRepo repository.TaskRepository) *AssignmentService {
	return &AssignmentService{advisor: advisor, userRepo: userRepo, taskRepo: taskRepo}
}

// SuggestForTeam offers the team's members as candidates. A candidate's
// workload is their recorded workload plus their open tasks.
func (s *AssignmentService) SuggestForTeam(ctx context.Context, teamID, description string) (*Suggestion, error) {
	if s.advisor == nil {
		return nil, advisorErr(AdvisorNotConfigured, ErrAIServiceNotConfigured)
	}

	users, err := s.userRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	roster, err := s.roster(ctx, users)
	if err != nil {
		return nil, err
	}

	return s.advisor.Suggest(ctx, SuggestInput{Description: description, Roster: roster})
}

func (s *AssignmentService) roster(ctx context.Context, users []models.User) ([]Candidate, error) {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	open, err := s.taskRepo.CountOpenByAssignee(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count open tasks: %w", err)
	}

	roster := make([]Candidate, len(users))
	for i, u := range users {
		roster[i] = Candidate{
			UserID:    u.ID,
			Name:      u.Name,
			Expertise: u.Expertise,
			Workload:  u.Workload + open[u.ID],
		}
	}
	return roster, nil
}
