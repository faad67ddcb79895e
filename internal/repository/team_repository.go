package repository

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yantrahq/yantra/internal/models"
)

const teamsCollection = "teams"

// teamRepository implements TeamRepository on Firestore
type teamRepository struct {
	client *firestore.Client
}

// NewTeamRepository creates a new TeamRepository instance
func NewTeamRepository(client *firestore.Client) TeamRepository {
	return &teamRepository{
		client: client,
	}
}

func decodeTeam(snap *firestore.DocumentSnapshot) (*models.Team, error) {
	var t models.Team
	if err := snap.DataTo(&t); err != nil {
		return nil, err
	}
	t.ID = snap.Ref.ID
	return &t, nil
}

func (r *teamRepository) Get(ctx context.Context, id string) (*models.Team, error) {
	snap, err := r.client.Collection(teamsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, classify("get team", err)
	}
	t, err := decodeTeam(snap)
	if err != nil {
		return nil, classify("decode team", err)
	}
	return t, nil
}

func (r *teamRepository) FindByCode(ctx context.Context, code string) (*models.Team, error) {
	iter := r.client.Collection(teamsCollection).Where("code", "==", code).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify("find team by code", err)
	}
	t, err := decodeTeam(snap)
	if err != nil {
		return nil, classify("decode team", err)
	}
	return t, nil
}

func (r *teamRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.client.Collection(teamsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, classify("check team", err)
	}
	return true, nil
}

func (r *teamRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	teamRef := r.client.Collection(teamsCollection).Doc(team.ID)
	creatorRef := r.client.Collection(principalsCollection).Doc(team.Leader)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(teamRef); err == nil {
			return ErrAlreadyExists
		} else if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(teamRef, team); err != nil {
			return err
		}
		return tx.Set(creatorRef, map[string]interface{}{
			"teamId":   team.ID,
			"isLeader": true,
		}, firestore.MergeAll)
	})
	return classify("create team", err)
}

func (r *teamRepository) AddMember(ctx context.Context, id, principalID string) (*models.Team, error) {
	teamRef := r.client.Collection(teamsCollection).Doc(id)
	principalRef := r.client.Collection(principalsCollection).Doc(principalID)

	var joined *models.Team
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(teamRef)
		if err != nil {
			return err
		}
		t, err := decodeTeam(snap)
		if err != nil {
			return err
		}
		if t.IsFull() {
			return ErrTeamFull
		}
		if t.HasMember(principalID) {
			return ErrAlreadyMember
		}
		if err := tx.Update(teamRef, []firestore.Update{
			{Path: "members", Value: firestore.ArrayUnion(principalID)},
		}); err != nil {
			return err
		}
		if err := tx.Set(principalRef, map[string]interface{}{"teamId": id}, firestore.MergeAll); err != nil {
			return err
		}
		t.Members = append(t.Members, principalID)
		joined = t
		return nil
	})
	if err != nil {
		return nil, classify("add member", err)
	}
	return joined, nil
}

func (r *teamRepository) List(ctx context.Context) ([]*models.Team, error) {
	iter := r.client.Collection(teamsCollection).Documents(ctx)
	defer iter.Stop()

	var teams []*models.Team
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classify("list teams", err)
		}
		t, err := decodeTeam(snap)
		if err != nil {
			return nil, classify("decode team", err)
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func (r *teamRepository) SetSubmission(ctx context.Context, id string, submission *models.Submission, round string) error {
	updates := []firestore.Update{
		{Path: "submission", Value: submission},
	}
	if round != "" {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"rounds", round}, Value: true})
	}
	_, err := r.client.Collection(teamsCollection).Doc(id).Update(ctx, updates)
	return classify("set submission", err)
}
