package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"match-workers/internal/models"
)

const candidateColumns = `id, version, title, domain_key, skills, years_experience, seniority,
		       salary_point, salary_min, salary_max, city, lat, lng,
		       commute_max_minutes, commute_mode, available_from, notice_period_days, work_model`

const jobColumns = `id, version, title, domain_key, must_have_skills, nice_to_have_skills,
		       experience_min, experience_max, seniority, salary_min, salary_max, city, lat, lng,
		       remote, onsite_days_per_week, start_by, work_model`

// ProfileStore reads candidate_profiles and job_profiles.
type ProfileStore struct {
	db DBTX
}

func NewProfileStore(db DBTX) *ProfileStore {
	return &ProfileStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (models.CandidateProfile, error) {
	var (
		c                      models.CandidateProfile
		title, domain, senior  sql.NullString
		city, mode, workModel  sql.NullString
		years, point           sql.NullFloat64
		salMin, salMax         sql.NullFloat64
		lat, lng               sql.NullFloat64
		commuteMax, noticeDays sql.NullInt64
		availableFrom          sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.Version, &title, &domain, pq.Array(&c.Skills), &years, &senior,
		&point, &salMin, &salMax, &city, &lat, &lng,
		&commuteMax, &mode, &availableFrom, &noticeDays, &workModel,
	)
	if err != nil {
		return c, err
	}

	c.Title = title.String
	c.DomainKey = domain.String
	c.YearsExperience = floatPtr(years)
	c.Seniority = models.Seniority(senior.String)
	c.Salary = models.SalaryExpectation{Point: floatPtr(point), Min: floatPtr(salMin), Max: floatPtr(salMax)}
	c.City = city.String
	if lat.Valid && lng.Valid {
		c.Location = &models.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	c.Commute = models.CommutePreference{MaxMinutes: intPtr(commuteMax), Mode: mode.String}
	c.AvailableFrom = timePtr(availableFrom)
	c.NoticePeriodDays = intPtr(noticeDays)
	c.WorkModel = models.WorkModel(workModel.String)
	return c, nil
}

func scanJob(row rowScanner) (models.JobProfile, error) {
	var (
		j                        models.JobProfile
		title, domain, senior    sql.NullString
		city, workModel          sql.NullString
		expMin, expMax           sql.NullFloat64
		salMin, salMax, lat, lng sql.NullFloat64
		onsiteDays               sql.NullInt64
		startBy                  sql.NullTime
	)
	err := row.Scan(
		&j.ID, &j.Version, &title, &domain, pq.Array(&j.MustHaveSkills), pq.Array(&j.NiceToHaveSkills),
		&expMin, &expMax, &senior, &salMin, &salMax, &city, &lat, &lng,
		&j.Remote, &onsiteDays, &startBy, &workModel,
	)
	if err != nil {
		return j, err
	}

	j.Title = title.String
	j.DomainKey = domain.String
	j.Experience = models.YearsRange{Min: floatPtr(expMin), Max: floatPtr(expMax)}
	j.Seniority = models.Seniority(senior.String)
	j.Salary = models.SalaryRange{Min: floatPtr(salMin), Max: floatPtr(salMax)}
	j.City = city.String
	if lat.Valid && lng.Valid {
		j.Location = &models.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	j.OnsiteDaysPerWeek = int(onsiteDays.Int64)
	j.StartBy = timePtr(startBy)
	j.WorkModel = models.WorkModel(workModel.String)
	return j, nil
}

// Candidate returns ErrNotFound when no row has the id.
func (s *ProfileStore) Candidate(ctx context.Context, id string) (models.CandidateProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidate_profiles
		WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		return c, fmt.Errorf("candidate %s: %w", id, notFound(err))
	}
	return c, nil
}

// Candidates loads the rows that exist among ids; missing ids are skipped.
func (s *ProfileStore) Candidates(ctx context.Context, ids []string) ([]models.CandidateProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidate_profiles
		WHERE id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query candidate_profiles: %w", err)
	}
	defer rows.Close()

	out := make([]models.CandidateProfile, 0, len(ids))
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate_profiles: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Job returns ErrNotFound when no row has the id.
func (s *ProfileStore) Job(ctx context.Context, id string) (models.JobProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM job_profiles
		WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		return j, fmt.Errorf("job %s: %w", id, notFound(err))
	}
	return j, nil
}

// Jobs loads the rows that exist among ids; missing ids are skipped.
func (s *ProfileStore) Jobs(ctx context.Context, ids []string) ([]models.JobProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM job_profiles
		WHERE id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query job_profiles: %w", err)
	}
	defer rows.Close()

	out := make([]models.JobProfile, 0, len(ids))
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job_profiles: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
