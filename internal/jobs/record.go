package jobs

import (
	"fmt"
	"time"

	"itinerary-api/internal/domain"
	"itinerary-api/internal/firestore"
)

// encodeJob maps a job onto the store's field envelope. Every field is
// always present: the store patches per field, so a write that omitted
// destination or createdAt could leave a partially reset document behind.
func encodeJob(j *domain.Job) map[string]firestore.Value {
	completedAt := firestore.Null()
	if j.CompletedAt != nil {
		completedAt = firestore.String(j.CompletedAt.UTC().Format(time.RFC3339Nano))
	}
	errVal := firestore.Null()
	if j.Error != nil {
		errVal = firestore.String(*j.Error)
	}

	days := make([]firestore.Value, 0, len(j.Itinerary))
	for _, d := range j.Itinerary {
		activities := make([]firestore.Value, 0, len(d.Activities))
		for _, a := range d.Activities {
			activities = append(activities, firestore.Map(map[string]firestore.Value{
				"time":        firestore.String(a.Time),
				"description": firestore.String(a.Description),
				"location":    firestore.String(a.Location),
			}))
		}
		days = append(days, firestore.Map(map[string]firestore.Value{
			"day":        firestore.Integer(int64(d.Day)),
			"theme":      firestore.String(d.Theme),
			"activities": firestore.Array(activities...),
		}))
	}

	return map[string]firestore.Value{
		"status":       firestore.String(string(j.Status)),
		"destination":  firestore.String(j.Destination),
		"durationDays": firestore.Integer(int64(j.DurationDays)),
		"createdAt":    firestore.String(j.CreatedAt.UTC().Format(time.RFC3339Nano)),
		"completedAt":  completedAt,
		"itinerary":    firestore.Array(days...),
		"error":        errVal,
	}
}

// decodeJob rebuilds a job from its stored field envelope.
func decodeJob(id string, fields map[string]firestore.Value) (*domain.Job, error) {
	status, err := stringField(fields, "status")
	if err != nil {
		return nil, err
	}
	destination, err := stringField(fields, "destination")
	if err != nil {
		return nil, err
	}
	duration, err := integerField(fields, "durationDays")
	if err != nil {
		return nil, err
	}
	createdAt, err := timeField(fields, "createdAt")
	if err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:           id,
		Status:       domain.JobStatus(status),
		Destination:  destination,
		DurationDays: int(duration),
		CreatedAt:    createdAt,
		Itinerary:    []domain.ItineraryDay{},
	}

	if v, ok := fields["completedAt"]; ok && !v.IsNull() {
		ts, err := timeField(fields, "completedAt")
		if err != nil {
			return nil, err
		}
		job.CompletedAt = &ts
	}
	if v, ok := fields["error"]; ok && !v.IsNull() {
		if v.Kind() != firestore.KindString {
			return nil, fmt.Errorf("job record: error field is not a string")
		}
		msg := v.Str()
		job.Error = &msg
	}

	if v, ok := fields["itinerary"]; ok && !v.IsNull() {
		if v.Kind() != firestore.KindArray {
			return nil, fmt.Errorf("job record: itinerary field is not an array")
		}
		for i, item := range v.Items() {
			day, err := decodeDay(item)
			if err != nil {
				return nil, fmt.Errorf("job record: itinerary entry %d: %w", i, err)
			}
			job.Itinerary = append(job.Itinerary, day)
		}
	}

	return job, nil
}

func decodeDay(v firestore.Value) (domain.ItineraryDay, error) {
	if v.Kind() != firestore.KindMap {
		return domain.ItineraryDay{}, fmt.Errorf("entry is not a record")
	}
	fields := v.Fields()

	dayNum, err := integerField(fields, "day")
	if err != nil {
		return domain.ItineraryDay{}, err
	}
	theme, err := stringField(fields, "theme")
	if err != nil {
		return domain.ItineraryDay{}, err
	}

	day := domain.ItineraryDay{Day: int(dayNum), Theme: theme, Activities: []domain.Activity{}}
	if av, ok := fields["activities"]; ok && !av.IsNull() {
		if av.Kind() != firestore.KindArray {
			return domain.ItineraryDay{}, fmt.Errorf("activities field is not an array")
		}
		for i, item := range av.Items() {
			if item.Kind() != firestore.KindMap {
				return domain.ItineraryDay{}, fmt.Errorf("activity %d is not a record", i)
			}
			af := item.Fields()
			activity := domain.Activity{
				Time:        af["time"].Str(),
				Description: af["description"].Str(),
				Location:    af["location"].Str(),
			}
			day.Activities = append(day.Activities, activity)
		}
	}
	return day, nil
}

func stringField(fields map[string]firestore.Value, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("job record: missing field %q", name)
	}
	if v.Kind() != firestore.KindString {
		return "", fmt.Errorf("job record: field %q is not a string", name)
	}
	return v.Str(), nil
}

func integerField(fields map[string]firestore.Value, name string) (int64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("job record: missing field %q", name)
	}
	if v.Kind() != firestore.KindInteger {
		return 0, fmt.Errorf("job record: field %q is not an integer", name)
	}
	return v.Int(), nil
}

func timeField(fields map[string]firestore.Value, name string) (time.Time, error) {
	s, err := stringField(fields, name)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("job record: field %q is not a timestamp: %w", name, err)
	}
	return ts, nil
}
