package inmemdb

import (
	"sort"
	"time"

	"github.com/trezcool/edumaster/core/lesson"
)

func (db *DB) Lessons(filter lesson.Filter) []lesson.Lesson {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	lessons := make([]lesson.Lesson, 0, len(db.lessons))
	for _, l := range db.lessons {
		if filter.Match(*l) {
			lessons = append(lessons, *l)
		}
	}
	sortLessons(lessons)
	return lessons
}

func (db *DB) Lesson(id string) (lesson.Lesson, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if l, ok := db.lessons[id]; ok {
		return *l, nil
	}
	return lesson.Lesson{}, ErrNotFound
}

// SaveLesson creates l when it has no id, otherwise replaces the stored lesson.
func (db *DB) SaveLesson(l lesson.Lesson) (lesson.Lesson, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if l.ID == "" {
		l.ID = newID()
		l.CreatedAt = time.Now().UTC()
	} else if orig, ok := db.lessons[l.ID]; ok {
		l.CreatedAt = orig.CreatedAt
	} else {
		return lesson.Lesson{}, ErrNotFound
	}
	db.lessons[l.ID] = &l
	return l, nil
}

func (db *DB) DeleteLesson(id string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.lessons[id]; !ok {
		return ErrNotFound
	}
	delete(db.lessons, id)
	for _, bought := range db.purchases {
		delete(bought, id)
	}
	return nil
}

func (db *DB) Purchase(userID, lessonID string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.lessons[lessonID]; !ok {
		return ErrNotFound
	}
	bought, ok := db.purchases[userID]
	if !ok {
		bought = make(map[string]bool)
		db.purchases[userID] = bought
	}
	if bought[lessonID] {
		return ErrAlreadyPurchased
	}
	bought[lessonID] = true
	return nil
}

func (db *DB) Purchased(userID string) []lesson.Lesson {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	lessons := make([]lesson.Lesson, 0, len(db.purchases[userID]))
	for id := range db.purchases[userID] {
		if l, ok := db.lessons[id]; ok {
			lessons = append(lessons, *l)
		}
	}
	sortLessons(lessons)
	return lessons
}

func sortLessons(lessons []lesson.Lesson) {
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].CreatedAt.Equal(lessons[j].CreatedAt) {
			return lessons[i].Title < lessons[j].Title
		}
		return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
	})
}
