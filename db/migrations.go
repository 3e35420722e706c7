package db

import (
	"slices"

	"github.com/charmbracelet/log"
)

var (
	usersTable = Table{Name: "users", Columns: []string{
		"user_id", "username", "password_hash", "display_name", "created_at", "bio", "avatar_path",
	}}
	postsTable = Table{Name: "posts", Columns: []string{
		"post_id", "author_id", "content", "created_at", "original_post_id", "is_deleted",
	}}
	commentsTable = Table{Name: "comments", Columns: []string{
		"comment_id", "post_id", "author_id", "content", "created_at", "parent_comment_id", "is_deleted",
	}}
	reactionsTable = Table{Name: "reactions", Columns: []string{
		"post_id", "user_id", "created_at",
	}}
	followsTable = Table{Name: "follows", Columns: []string{
		"follower_id", "followee_id", "created_at",
	}}
	hashtagsTable = Table{Name: "hashtags", Columns: []string{
		"hashtag", "first_seen_at", "last_seen_at",
	}}
	postHashtagsTable = Table{Name: "post_hashtags", Columns: []string{
		"post_id", "hashtag",
	}}
	activityTable = Table{Name: "activity_log", Columns: []string{
		"log_id", "event_type", "actor_id", "target_type", "target_id", "metadata", "created_at",
	}}
)

// Tables lists every table the application owns.
var Tables = []Table{
	usersTable,
	postsTable,
	commentsTable,
	reactionsTable,
	followsTable,
	hashtagsTable,
	postHashtagsTable,
	activityTable,
}

// RunMigrations creates missing table files and extends existing ones with
// any declared column they lack. Existing rows and unknown columns are kept.
func (db *DB) RunMigrations() error {
	return db.wrapTransaction(func() error {
		for _, t := range Tables {
			if err := db.migrateTable(t); err != nil {
				log.Printf("Error migrating table %s: %v", t.Name, err)
				return err
			}
		}
		return nil
	})
}

func (db *DB) migrateTable(t Table) error {
	rows, header, err := db.store.readWithHeader(t)
	if err != nil {
		return err
	}
	if header == nil {
		log.Printf("Table %s created", t.Name)
		return db.store.Write(t, rows)
	}

	missing := false
	for _, c := range t.Columns {
		if !slices.Contains(header, c) {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}

	log.Printf("Extended table %s with new columns", t.Name)
	return db.store.Write(t, rows)
}
