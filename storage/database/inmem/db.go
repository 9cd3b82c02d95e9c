// Package inmemdb provides map-backed repositories for dev servers and tests.
// Rows are keyed by uuid; unique constraints behave like their SQL
// counterparts, returning the owning package's ErrAlreadyExists.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/irshadhq/irshad/core/account"
	"github.com/irshadhq/irshad/core/assessment"
	"github.com/irshadhq/irshad/core/attendance"
	"github.com/irshadhq/irshad/core/course"
	"github.com/irshadhq/irshad/core/hifz"
	"github.com/irshadhq/irshad/core/library"
	"github.com/irshadhq/irshad/core/notify"
)

type (
	DB struct {
		mutex sync.RWMutex

		profiles      map[string]*account.Profile        // by id
		roles         map[string]*account.RoleAssignment // by id
		courses       map[string]*course.Course
		enrollments   map[string]*course.Enrollment
		tests         map[string]*assessment.Test
		results       map[string]*assessment.Result
		attendance    map[string]*attendance.Record
		progress      map[string]*hifz.Entry
		notifications map[string]*notify.Notification
		resources     map[string]*library.Resource
	}
)

func Open() (*DB, error) {
	return &DB{
		profiles:      make(map[string]*account.Profile),
		roles:         make(map[string]*account.RoleAssignment),
		courses:       make(map[string]*course.Course),
		enrollments:   make(map[string]*course.Enrollment),
		tests:         make(map[string]*assessment.Test),
		results:       make(map[string]*assessment.Result),
		attendance:    make(map[string]*attendance.Record),
		progress:      make(map[string]*hifz.Entry),
		notifications: make(map[string]*notify.Notification),
		resources:     make(map[string]*library.Resource),
	}, nil
}

func newPK() string { return uuid.NewString() }
