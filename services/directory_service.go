package services

import (
	"context"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var passwordCost = bcrypt.DefaultCost

// DirectoryService owns user records: registration, lookup, profile edits
// and the search used by the dashboards.
type DirectoryService struct {
	records *Records
	now     func() time.Time
}

func NewDirectoryService(records *Records) *DirectoryService {
	return &DirectoryService{records: records, now: time.Now}
}

type RegisterInput struct {
	IDCard    string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Img       string
	Gender    string
	BirthDate string
	Profile   models.Profile
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *DirectoryService) CreateUser(ctx context.Context, in RegisterInput) (models.User, error) {
	if in.Profile == nil {
		return models.User{}, invalid("role", "must be student or tutor")
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return models.User{}, invalid("email", "is required")
	}
	if in.Password == "" {
		return models.User{}, invalid("password", "is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:        uuid.NewString(),
		IDCard:    in.IDCard,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Password:  string(hashed),
		CreatedAt: s.now().UTC(),
		Img:       in.Img,
		Gender:    in.Gender,
		BirthDate: in.BirthDate,
	}.WithProfile(withSubjectIDs(in.Profile))

	err = s.records.Users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if u.Email == email {
				return nil, ErrEmailExists
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func withSubjectIDs(p models.Profile) models.Profile {
	tp, ok := p.(models.TutorProfile)
	if !ok {
		return p
	}
	subjects := make([]models.Subject, len(tp.Subjects))
	for i, sub := range tp.Subjects {
		if sub.ID == "" {
			sub.ID = uuid.NewString()
		}
		subjects[i] = sub
	}
	tp.Subjects = subjects
	return tp
}

func (s *DirectoryService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *DirectoryService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.records.Users.Get(ctx, id)
	return user, translate(err, "user")
}

func (s *DirectoryService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	email = normalizeEmail(email)
	user, err := s.records.Users.Find(ctx, func(u models.User) bool { return u.Email == email })
	return user, translate(err, "user")
}

// ProfileUpdate carries the fields a user may edit; nil means unchanged.
// Role-specific fields are ignored when they do not match the user's role.
type ProfileUpdate struct {
	IDCard    *string
	FirstName *string
	LastName  *string
	Email     *string
	Img       *string
	Gender    *string
	BirthDate *string

	Career            *string
	SubjectOfInterest *string

	TutorType *models.TutorType
	Subjects  []models.Subject
}

func setIf(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (s *DirectoryService) UpdateUser(ctx context.Context, id string, upd ProfileUpdate) (models.User, error) {
	var updated models.User
	err := s.records.Users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		idx := -1
		for i := range users {
			if users[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, notFound("user")
		}

		if upd.Email != nil {
			email := normalizeEmail(*upd.Email)
			if email == "" {
				return nil, invalid("email", "is required")
			}
			for i, u := range users {
				if i != idx && u.Email == email {
					return nil, ErrEmailExists
				}
			}
			upd.Email = &email
		}

		u := users[idx]
		setIf(&u.IDCard, upd.IDCard)
		setIf(&u.FirstName, upd.FirstName)
		setIf(&u.LastName, upd.LastName)
		setIf(&u.Email, upd.Email)
		setIf(&u.Img, upd.Img)
		setIf(&u.Gender, upd.Gender)
		setIf(&u.BirthDate, upd.BirthDate)

		profile, err := u.Profile()
		if err != nil {
			return nil, err
		}
		switch p := profile.(type) {
		case models.StudentProfile:
			setIf(&p.Career, upd.Career)
			setIf(&p.SubjectOfInterest, upd.SubjectOfInterest)
			profile = p
		case models.TutorProfile:
			if upd.TutorType != nil {
				p.TutorType = *upd.TutorType
			}
			if upd.Subjects != nil {
				p.Subjects = upd.Subjects
			}
			profile = withSubjectIDs(p)
		}

		updated = u.WithProfile(profile)
		users[idx] = updated
		return users, nil
	})
	return updated, err
}

type TutorFilter struct {
	Search    string
	Subject   string
	TutorType models.TutorType
}

type StudentFilter struct {
	Search  string
	Subject string
	Career  string
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func teaches(tutor models.User, subject string) bool {
	for _, sub := range tutor.Subjects {
		if containsFold(sub.Name, subject) {
			return true
		}
	}
	return false
}

func (s *DirectoryService) ListTutors(ctx context.Context, f TutorFilter) ([]models.User, error) {
	return s.records.Users.Filter(ctx, func(u models.User) bool {
		if u.Role != models.RoleTutor {
			return false
		}
		if f.Search != "" && !containsFold(u.FullName(), f.Search) {
			return false
		}
		if f.Subject != "" && !teaches(u, f.Subject) {
			return false
		}
		return f.TutorType == "" || u.TutorType == f.TutorType
	})
}

func (s *DirectoryService) ListStudents(ctx context.Context, f StudentFilter) ([]models.User, error) {
	return s.records.Users.Filter(ctx, func(u models.User) bool {
		if u.Role != models.RoleStudent {
			return false
		}
		if f.Search != "" && !containsFold(u.FullName(), f.Search) {
			return false
		}
		if f.Subject != "" && !containsFold(u.SubjectOfInterest, f.Subject) {
			return false
		}
		return f.Career == "" || u.Career == f.Career
	})
}

// RelevantTutors lists tutors teaching the student's subject of interest.
func (s *DirectoryService) RelevantTutors(ctx context.Context, student models.User) ([]models.User, error) {
	if student.SubjectOfInterest == "" {
		return []models.User{}, nil
	}
	return s.ListTutors(ctx, TutorFilter{Subject: student.SubjectOfInterest})
}

// PotentialStudents lists students whose subject of interest overlaps one of
// the tutor's subjects in either direction.
func (s *DirectoryService) PotentialStudents(ctx context.Context, tutor models.User) ([]models.User, error) {
	return s.records.Users.Filter(ctx, func(u models.User) bool {
		if u.Role != models.RoleStudent || u.SubjectOfInterest == "" {
			return false
		}
		for _, sub := range tutor.Subjects {
			if containsFold(sub.Name, u.SubjectOfInterest) || containsFold(u.SubjectOfInterest, sub.Name) {
				return true
			}
		}
		return false
	})
}
