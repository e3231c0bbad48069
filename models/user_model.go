package models

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

type TutorType string

const (
	TutorTypeUnet    TutorType = "unet"
	TutorTypePrivate TutorType = "private"
)

// User is the stored directory record. Role-specific fields are only
// populated for the matching role; use Profile to work with them.
type User struct {
	ID        string    `json:"id"`
	IDCard    string    `json:"idCard"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`

	Img       string `json:"img,omitempty"`
	Gender    string `json:"genero,omitempty"`
	BirthDate string `json:"date,omitempty"`

	Career            string `json:"career,omitempty"`
	SubjectOfInterest string `json:"subjectOfInterest,omitempty"`

	TutorType TutorType `json:"tutorType,omitempty"`
	Subjects  []Subject `json:"subjects,omitempty"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Profile is either a StudentProfile or a TutorProfile.
type Profile interface {
	Role() Role
	isProfile()
}

type StudentProfile struct {
	Career            string `json:"career"`
	SubjectOfInterest string `json:"subjectOfInterest"`
}

func (StudentProfile) Role() Role { return RoleStudent }
func (StudentProfile) isProfile() {}

type TutorProfile struct {
	TutorType TutorType `json:"tutorType"`
	Subjects  []Subject `json:"subjects"`
}

func (TutorProfile) Role() Role { return RoleTutor }
func (TutorProfile) isProfile() {}

func (u User) Profile() (Profile, error) {
	switch u.Role {
	case RoleStudent:
		return StudentProfile{Career: u.Career, SubjectOfInterest: u.SubjectOfInterest}, nil
	case RoleTutor:
		return TutorProfile{TutorType: u.TutorType, Subjects: u.Subjects}, nil
	default:
		return nil, fmt.Errorf("user %s has unknown role %q", u.ID, u.Role)
	}
}

// WithProfile sets the role and role-specific fields from p and clears the
// fields that belong to the other role.
func (u User) WithProfile(p Profile) User {
	u.Career, u.SubjectOfInterest = "", ""
	u.TutorType, u.Subjects = "", nil

	switch p := p.(type) {
	case StudentProfile:
		u.Role = RoleStudent
		u.Career = p.Career
		u.SubjectOfInterest = p.SubjectOfInterest
	case TutorProfile:
		u.Role = RoleTutor
		u.TutorType = p.TutorType
		u.Subjects = p.Subjects
	}
	return u
}
