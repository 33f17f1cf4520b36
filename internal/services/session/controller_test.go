package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamerelay-go/internal/dependencies/mocks"
	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/storage/memory"
	"github.com/mcoot/gamerelay-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) participant(conn string, name string) model.Participant {
	return model.Participant{
		ConnectionID: model.ConnectionID(conn),
		DisplayName:  name,
	}
}

// Create tests

func (s *ControllerSuite) TestCreateSucceeds() {
	s.random.QueueString("ABC234")

	sess, err := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))
	s.Require().NoError(err)

	s.Equal(model.SessionID("ABC234"), sess.ID)
	s.Equal(1, sess.SeatsAssigned)
	s.Equal(s.clock.Now(), sess.CreatedAt)
	s.Require().Len(sess.Players, 1)
	s.Equal(model.RolePlayer, sess.Players[0].Role)
	s.Equal(model.ColorFirst, sess.Players[0].Color)
	s.Empty(sess.Spectators)
	s.Nil(sess.State)
}

func (s *ControllerSuite) TestCreateIsPersisted() {
	s.random.QueueString("ABC234")

	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	retrieved, err := s.controller.Get(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, retrieved.ID)
}

func (s *ControllerSuite) TestCreateIndexesHostConnection() {
	s.random.QueueString("ABC234")

	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	id, err := s.controller.SessionFor(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Equal(sess.ID, id)
}

func (s *ControllerSuite) TestCreateRegeneratesCollidingCode() {
	s.random.QueueString("AAAAAA")
	_, err := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))
	s.Require().NoError(err)

	s.random.QueueString("AAAAAA", "BBBBBB")
	sess, err := s.controller.Create(s.ctx, s.participant("conn-2", "Bob"))
	s.Require().NoError(err)
	s.Equal(model.SessionID("BBBBBB"), sess.ID)
}

func (s *ControllerSuite) TestCreateRejectsConnectionAlreadyInSession() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))
	s.Require().NoError(err)

	_, err = s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))
	s.ErrorIs(err, model.ErrAlreadyInSession)
}

// Admit tests

func (s *ControllerSuite) TestAdmitSecondPlayer() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	admission, err := s.controller.Admit(s.ctx, sess.ID, s.participant("conn-2", "Bob"))
	s.Require().NoError(err)

	s.Equal(model.RolePlayer, admission.Role)
	s.Equal(model.ColorSecond, admission.Color)
	s.Equal(2, admission.Session.SeatsAssigned)
	s.Len(admission.Session.Players, 2)
}

func (s *ControllerSuite) TestAdmitThirdIsSpectator() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))
	_, err := s.controller.Admit(s.ctx, sess.ID, s.participant("conn-2", "Bob"))
	s.Require().NoError(err)

	admission, err := s.controller.Admit(s.ctx, sess.ID, s.participant("conn-3", "Cid"))
	s.Require().NoError(err)

	s.Equal(model.RoleSpectator, admission.Role)
	s.Equal(model.ColorNone, admission.Color)
	s.Equal(2, admission.Session.SeatsAssigned)
	s.Len(admission.Session.Players, 2)
	s.Len(admission.Session.Spectators, 1)
}

func (s *ControllerSuite) TestAdmitUnknownSession() {
	_, err := s.controller.Admit(s.ctx, "NOPE22", s.participant("conn-1", "Ann"))
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestAdmitRejectsConnectionAlreadyInSession() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	_, err := s.controller.Admit(s.ctx, sess.ID, s.participant("conn-1", "Ann"))
	s.ErrorIs(err, model.ErrAlreadyInSession)
}

func (s *ControllerSuite) TestVacatedSeatStaysReserved() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))
	_, err := s.controller.Admit(s.ctx, sess.ID, s.participant("conn-2", "Bob"))
	s.Require().NoError(err)

	_, err = s.controller.Remove(s.ctx, sess.ID, "conn-2")
	s.Require().NoError(err)

	// Bob's seat is gone for good; Cid watches.
	admission, err := s.controller.Admit(s.ctx, sess.ID, s.participant("conn-3", "Cid"))
	s.Require().NoError(err)
	s.Equal(model.RoleSpectator, admission.Role)
	s.Equal(2, admission.Session.SeatsAssigned)
	s.Len(admission.Session.Players, 1)
}

// Remove tests

func (s *ControllerSuite) TestRemovePlayer() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	removed, err := s.controller.Remove(s.ctx, sess.ID, "conn-1")
	s.Require().NoError(err)
	s.Equal(model.RolePlayer, removed.Role)
	s.Equal("Ann", removed.DisplayName)

	retrieved, err := s.controller.Get(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Empty(retrieved.Players)
	s.Equal(1, retrieved.SeatsAssigned)
}

func (s *ControllerSuite) TestRemoveSpectator() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))
	_, _ = s.controller.Admit(s.ctx, sess.ID, s.participant("conn-2", "Bob"))
	_, _ = s.controller.Admit(s.ctx, sess.ID, s.participant("conn-3", "Cid"))

	removed, err := s.controller.Remove(s.ctx, sess.ID, "conn-3")
	s.Require().NoError(err)
	s.Equal(model.RoleSpectator, removed.Role)

	retrieved, _ := s.controller.Get(s.ctx, sess.ID)
	s.Empty(retrieved.Spectators)
	s.Len(retrieved.Players, 2)
}

func (s *ControllerSuite) TestRemoveClearsReverseIndex() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	_, err := s.controller.Remove(s.ctx, sess.ID, "conn-1")
	s.Require().NoError(err)

	_, err = s.controller.SessionFor(s.ctx, "conn-1")
	s.ErrorIs(err, model.ErrNotInSession)
}

func (s *ControllerSuite) TestRemoveNotInSession() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	_, err := s.controller.Remove(s.ctx, sess.ID, "conn-9")
	s.ErrorIs(err, model.ErrNotInSession)
}

// Delete tests

func (s *ControllerSuite) TestDeleteClearsAllMembers() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))
	_, _ = s.controller.Admit(s.ctx, sess.ID, s.participant("conn-2", "Bob"))
	_, _ = s.controller.Admit(s.ctx, sess.ID, s.participant("conn-3", "Cid"))

	s.Require().NoError(s.controller.Delete(s.ctx, sess.ID))

	_, err := s.controller.Get(s.ctx, sess.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
	for _, conn := range []model.ConnectionID{"conn-1", "conn-2", "conn-3"} {
		_, err := s.controller.SessionFor(s.ctx, conn)
		s.ErrorIs(err, model.ErrNotInSession)
	}
}

func (s *ControllerSuite) TestDeleteAbsentSessionIsNoop() {
	s.NoError(s.controller.Delete(s.ctx, "NOPE22"))
}

// UpdateState tests

func (s *ControllerSuite) TestUpdateStateReplacesSnapshot() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	state := json.RawMessage(`{"board":[1,2,3]}`)
	updated, err := s.controller.UpdateState(s.ctx, sess.ID, state)
	s.Require().NoError(err)
	s.JSONEq(string(state), string(updated.State))

	retrieved, _ := s.controller.Get(s.ctx, sess.ID)
	s.JSONEq(string(state), string(retrieved.State))
}

func (s *ControllerSuite) TestUpdateStateUnknownSession() {
	_, err := s.controller.UpdateState(s.ctx, "NOPE22", json.RawMessage(`{}`))
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// DeleteExpired tests

func (s *ControllerSuite) TestDeleteExpiredRemovesOldSessions() {
	s.random.QueueString("OLD234")
	old, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	s.clock.Set(s.clock.Now().Add(5 * time.Hour))
	s.random.QueueString("NEW234")
	fresh, _ := s.controller.Create(s.ctx, s.participant("conn-2", "Bob"))

	deleted, err := s.controller.DeleteExpired(s.ctx, 4*time.Hour)
	s.Require().NoError(err)
	s.Equal(1, deleted)

	_, err = s.controller.Get(s.ctx, old.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.controller.Get(s.ctx, fresh.ID)
	s.NoError(err)
}

func (s *ControllerSuite) TestDeleteExpiredKeepsSessionsAtExactBoundary() {
	s.random.QueueString("ABC234")
	sess, _ := s.controller.Create(s.ctx, s.participant("conn-1", "Ann"))

	s.clock.Set(s.clock.Now().Add(4 * time.Hour))

	deleted, err := s.controller.DeleteExpired(s.ctx, 4*time.Hour)
	s.Require().NoError(err)
	s.Equal(0, deleted)

	_, err = s.controller.Get(s.ctx, sess.ID)
	s.NoError(err)
}
