package db

import (
	"errors"
	"slices"

	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
)

// ReadFollowing returns the sorted ids of users that userId follows.
func (db *DB) ReadFollowing(userId string) ([]string, error) {
	return db.readFollowIds("follower_id", userId, "followee_id")
}

// ReadFollowers returns the sorted ids of users following userId.
func (db *DB) ReadFollowers(userId string) ([]string, error) {
	return db.readFollowIds("followee_id", userId, "follower_id")
}

func (db *DB) IsFollowing(followerId, followeeId string) (bool, error) {
	rows, err := db.store.Read(followsTable)
	if err != nil {
		return false, err
	}
	return findFollow(rows, followerId, followeeId) >= 0, nil
}

// Follow adds the edge. It returns false without writing when the edge exists
// or the user tries to follow themselves.
func (db *DB) Follow(followerId, followeeId string) (bool, error) {
	if followerId == "" || followeeId == "" || followerId == followeeId {
		return false, nil
	}
	created := false
	err := db.wrapTransaction(func() error {
		err := db.store.Update(followsTable, func(rows []Row) ([]Row, error) {
			if findFollow(rows, followerId, followeeId) >= 0 {
				return nil, errNoChange
			}
			created = true
			return append(rows, Row{
				"follower_id": followerId,
				"followee_id": followeeId,
				"created_at":  db.timestamp(),
			}), nil
		})
		if errors.Is(err, errNoChange) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = db.recordActivity(domain.EventUserFollowed, followerId, domain.TargetUser, followeeId, nil)
		return err
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Unfollow removes the edge. It returns false when there was none.
func (db *DB) Unfollow(followerId, followeeId string) (bool, error) {
	removed := false
	err := db.wrapTransaction(func() error {
		err := db.store.Update(followsTable, func(rows []Row) ([]Row, error) {
			i := findFollow(rows, followerId, followeeId)
			if i < 0 {
				return nil, errNoChange
			}
			removed = true
			return slices.DeleteFunc(rows, func(r Row) bool {
				return r["follower_id"] == followerId && r["followee_id"] == followeeId
			}), nil
		})
		if errors.Is(err, errNoChange) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = db.recordActivity(domain.EventUserUnfollowed, followerId, domain.TargetUser, followeeId, nil)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// ReadFollowCounts returns the follower and following counts of userId.
func (db *DB) ReadFollowCounts(userId string) (int, int, error) {
	followers, err := db.ReadFollowers(userId)
	if err != nil {
		return 0, 0, err
	}
	following, err := db.ReadFollowing(userId)
	if err != nil {
		return 0, 0, err
	}
	return len(followers), len(following), nil
}

func (db *DB) readFollowIds(matchCol, userId, idCol string) ([]string, error) {
	rows, err := db.store.Read(followsTable)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, r := range rows {
		if r[matchCol] == userId && !slices.Contains(ids, r[idCol]) {
			ids = append(ids, r[idCol])
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func findFollow(rows []Row, followerId, followeeId string) int {
	return slices.IndexFunc(rows, func(r Row) bool {
		return r["follower_id"] == followerId && r["followee_id"] == followeeId
	})
}

// ReadFollows returns the raw edges of userId as follower, newest first.
func (db *DB) ReadFollows(followerId string) ([]domain.Follow, error) {
	rows, err := db.store.Read(followsTable)
	if err != nil {
		return nil, err
	}
	var selected []Row
	for _, r := range rows {
		if r["follower_id"] == followerId {
			selected = append(selected, r)
		}
	}
	newestFirst(selected)
	follows := make([]domain.Follow, 0, len(selected))
	for _, r := range selected {
		follows = append(follows, domain.Follow{
			FollowerId: r["follower_id"],
			FolloweeId: r["followee_id"],
			CreatedAt:  util.ParseTimestamp(r["created_at"]),
		})
	}
	return follows, nil
}
