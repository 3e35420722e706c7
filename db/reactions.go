package db

import (
	"github.com/deemkeen/tusk/domain"
)

func (db *DB) IsLikedByUser(postId, userId string) (bool, error) {
	rows, err := db.store.Read(reactionsTable)
	if err != nil {
		return false, err
	}
	return findReaction(rows, postId, userId) >= 0, nil
}

func (db *DB) CountLikes(postId string) (int, error) {
	rows, err := db.store.Read(reactionsTable)
	if err != nil {
		return 0, err
	}
	return countLikes(rows, postId), nil
}

// ToggleLike likes the post when the user has not liked it yet and unlikes it
// otherwise. It returns the new state and like count.
func (db *DB) ToggleLike(postId, userId string) (bool, int, error) {
	var liked bool
	var count int
	err := db.wrapTransaction(func() error {
		err := db.store.Update(reactionsTable, func(rows []Row) ([]Row, error) {
			if i := findReaction(rows, postId, userId); i >= 0 {
				rows = append(rows[:i], rows[i+1:]...)
				liked = false
			} else {
				rows = append(rows, Row{"post_id": postId, "user_id": userId, "created_at": db.timestamp()})
				liked = true
			}
			count = countLikes(rows, postId)
			return rows, nil
		})
		if err != nil {
			return err
		}

		event := domain.EventReactionAdded
		if !liked {
			event = domain.EventReactionRemoved
		}
		_, err = db.recordActivity(event, userId, domain.TargetPost, postId, nil)
		return err
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// CountLikesByPost maps post ids to their like counts.
func (db *DB) CountLikesByPost() (map[string]int, error) {
	rows, err := db.store.Read(reactionsTable)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	seen := make(map[[2]string]struct{}, len(rows))
	for _, r := range rows {
		key := [2]string{r["post_id"], r["user_id"]}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		counts[r["post_id"]]++
	}
	return counts, nil
}

// ReadLikedPostIds returns the set of posts the user has liked.
func (db *DB) ReadLikedPostIds(userId string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if userId == "" {
		return liked, nil
	}
	rows, err := db.store.Read(reactionsTable)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r["user_id"] == userId {
			liked[r["post_id"]] = true
		}
	}
	return liked, nil
}

func findReaction(rows []Row, postId, userId string) int {
	for i, r := range rows {
		if r["post_id"] == postId && r["user_id"] == userId {
			return i
		}
	}
	return -1
}

// countLikes counts distinct users so a duplicated row never inflates it.
func countLikes(rows []Row, postId string) int {
	users := make(map[string]struct{})
	for _, r := range rows {
		if r["post_id"] == postId {
			users[r["user_id"]] = struct{}{}
		}
	}
	return len(users)
}
