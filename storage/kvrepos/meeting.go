package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/meeting"
)

type meetingRepository struct {
	meetings collection[meeting.Meeting]
}

var _ meeting.Repository = (*meetingRepository)(nil)

func NewMeetingRepository(store core.KVStore) meeting.Repository {
	return &meetingRepository{meetings: collection[meeting.Meeting]{store: store, key: KeyMeetings}}
}

func (repo *meetingRepository) QueryMeetings(ctx context.Context) ([]meeting.Meeting, error) {
	return repo.meetings.load(ctx)
}

func (repo *meetingRepository) CreateMeeting(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	m.ID = core.NewID()
	err := repo.meetings.update(ctx, func(items []meeting.Meeting) ([]meeting.Meeting, error) {
		return append(items, m), nil
	})
	return m, err
}

func (repo *meetingRepository) UpdateMeeting(
	ctx context.Context, id string, fn func(*meeting.Meeting) error,
) (meeting.Meeting, error) {
	return repo.meetings.updateOne(ctx, func(m meeting.Meeting) bool { return m.ID == id }, fn, meeting.ErrNotFound)
}
