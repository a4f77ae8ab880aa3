// Package storyspoiler holds the Story Spoiler API models and the ordered
// scenarios that exercise it.
package storyspoiler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storyspoiler-e2e/internal/apiclient"
	"storyspoiler-e2e/internal/check"
	"storyspoiler-e2e/internal/scenario"
)

// KeyStoryID holds the id captured by the create scenario.
const KeyStoryID scenario.Key = "story.id"

// NonExistingStoryID is never assigned by the service.
const NonExistingStoryID = "123456789"

// Scenario names, in execution order.
const (
	StepCreateStory            = "CreateStory_ShouldReturnCreated"
	StepEditStory              = "EditStory_ShouldReturnOK"
	StepGetAllStories          = "GetAllStories_ShouldReturnOK"
	StepDeleteStory            = "DeleteStory_ShouldReturnOK"
	StepCreateMissingFields    = "CreateStory_WithoutRequiredFields_ShouldReturnBadRequest"
	StepEditNonExistingStory   = "EditStory_NonExistingStory_ShouldReturnNotFound"
	StepDeleteNonExistingStory = "DeleteStory_NonExistingStory_ShouldReturnBadRequest"
)

// Drafts sent by the scenarios.
var (
	NewStoryDraft = StoryDraft{
		Title:       "Story 1",
		Description: "This is a new story.",
		URL:         "",
	}
	EditedStoryDraft = StoryDraft{
		Title:       "Edited Story",
		Description: "This is an edited story.",
		URL:         "",
	}
	EmptyStoryDraft       = StoryDraft{}
	NonExistingStoryDraft = StoryDraft{
		Title:       "Non-Existing Story",
		Description: "Non-Exsisting Story descripton",
		URL:         "",
	}
)

// Pipeline returns the seven scenarios in their required order.
func Pipeline() (*scenario.Pipeline, error) {
	return scenario.NewPipeline(
		scenario.Step{
			Name:     StepCreateStory,
			Provides: []scenario.Key{KeyStoryID},
			Run:      createStory,
		},
		scenario.Step{
			Name:     StepEditStory,
			Requires: []scenario.Key{KeyStoryID},
			Run:      editStory,
		},
		scenario.Step{
			Name: StepGetAllStories,
			Run:  getAllStories,
		},
		scenario.Step{
			Name:     StepDeleteStory,
			Requires: []scenario.Key{KeyStoryID},
			Run:      deleteStory,
		},
		scenario.Step{
			Name: StepCreateMissingFields,
			Run:  createWithoutRequiredFields,
		},
		scenario.Step{
			Name: StepEditNonExistingStory,
			Run:  editNonExistingStory,
		},
		scenario.Step{
			Name: StepDeleteNonExistingStory,
			Run:  deleteNonExistingStory,
		},
	)
}

func createStory(ctx context.Context, env *scenario.Env) error {
	res, err := env.Client.Send(ctx, http.MethodPost, CreateEndpoint, NewStoryDraft)
	if err != nil {
		return err
	}

	if err := check.Status(res, http.StatusCreated); err != nil {
		return err
	}

	if err := check.RequireField(res, "storyId"); err != nil {
		return err
	}

	created, err := check.DecodeJSON[CreateResponse](res)
	if err != nil {
		return err
	}

	env.State.Set(KeyStoryID, created.StoryID)
	env.Logger.Info().Str("story_id", created.StoryID).Msg("story created")

	if err := check.Contains("body", res.String(), created.StoryID); err != nil {
		return err
	}

	return check.Equal("msg", MsgCreated, created.Msg)
}

func editStory(ctx context.Context, env *scenario.Env) error {
	id := env.State.Value(KeyStoryID)

	res, err := env.Client.Send(ctx, http.MethodPut, GetEditEndpoint(id), EditedStoryDraft)
	if err != nil {
		return err
	}

	return expectEnvelope(res, http.StatusOK, MsgEdited)
}

func getAllStories(ctx context.Context, env *scenario.Env) error {
	res, err := env.Client.Send(ctx, http.MethodGet, AllEndpoint, nil)
	if err != nil {
		return err
	}

	if err := check.Status(res, http.StatusOK); err != nil {
		return err
	}

	stories, err := check.DecodeJSON[[]StoryRecord](res)
	if err != nil {
		return err
	}

	env.Logger.Debug().Int("count", len(stories)).Msg("stories listed")

	return check.NotEmpty("stories", len(stories))
}

func deleteStory(ctx context.Context, env *scenario.Env) error {
	id := env.State.Value(KeyStoryID)

	res, err := env.Client.Send(ctx, http.MethodDelete, GetDeleteEndpoint(id), nil)
	if err != nil {
		return err
	}

	return expectEnvelope(res, http.StatusOK, MsgDeleted)
}

func createWithoutRequiredFields(ctx context.Context, env *scenario.Env) error {
	res, err := env.Client.Send(ctx, http.MethodPost, CreateEndpoint, EmptyStoryDraft)
	if err != nil {
		return err
	}

	return check.Status(res, http.StatusBadRequest)
}

func editNonExistingStory(ctx context.Context, env *scenario.Env) error {
	res, err := env.Client.Send(ctx, http.MethodPut, GetEditEndpoint(NonExistingStoryID), NonExistingStoryDraft)
	if err != nil {
		return err
	}

	return expectEnvelope(res, http.StatusNotFound, MsgNotFound)
}

func deleteNonExistingStory(ctx context.Context, env *scenario.Env) error {
	res, err := env.Client.Send(ctx, http.MethodDelete, GetDeleteEndpoint(NonExistingStoryID), nil)
	if err != nil {
		return err
	}

	return expectEnvelope(res, http.StatusBadRequest, MsgUnableToDelete)
}

// expectEnvelope checks the status and the envelope message.
func expectEnvelope(res *apiclient.RawResponse, status int, msg string) error {
	if err := check.Status(res, status); err != nil {
		return err
	}

	envelope, err := check.DecodeJSON[Envelope](res)
	if err != nil {
		return err
	}

	return check.Equal("msg", msg, envelope.Msg)
}

// ErrNoStoryID is returned by helpers that need a captured id.
var ErrNoStoryID = errors.New("no story id captured")

// StoryID returns the id captured by the create scenario.
func StoryID(state *scenario.State) (string, error) {
	id, ok := state.Get(KeyStoryID)
	if !ok {
		return "", fmt.Errorf("%s: %w", KeyStoryID, ErrNoStoryID)
	}
	return id, nil
}
