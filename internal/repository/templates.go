package repository

import (
	"context"

	"github.com/DJaayy/slot-booking/internal/model"
)

// DefaultTemplates returns the system-seeded email templates, one
// per category. They are flagged default and therefore protected
// from deletion.
func DefaultTemplates() []model.EmailTemplate {
	return []model.EmailTemplate{
		{
			Name:     "Booking Confirmation",
			Category: model.CategoryBooking,
			Subject:  "Deployment slot booked: {{releaseName}}",
			Body: "Hi {{team}},\n\n" +
				"Your release {{releaseName}} has been booked for {{date}} ({{timeDetail}}).\n\n" +
				"Please make sure the release is ready before the window opens.",
			Variables: map[string]string{
				"releaseName": "Name of the booked release",
				"team":        "Owning team",
				"date":        "Slot date",
				"timeDetail":  "Slot time window",
			},
			IsDefault: true,
		},
		{
			Name:     "Status Update",
			Category: model.CategoryStatusUpdate,
			Subject:  "Release {{releaseName}} is now {{status}}",
			Body: "Hi {{team}},\n\n" +
				"The status of {{releaseName}} changed to {{status}}.\n" +
				"Comments: {{comments}}",
			Variables: map[string]string{
				"releaseName": "Name of the release",
				"team":        "Owning team",
				"status":      "New release status",
				"comments":    "Comments recorded with the change",
			},
			IsDefault: true,
		},
		{
			Name:     "Deployment Reminder",
			Category: model.CategoryReminder,
			Subject:  "Reminder: {{releaseName}} deploys on {{date}}",
			Body: "Hi {{team}},\n\n" +
				"This is a reminder that {{releaseName}} is scheduled for {{date}} ({{timeDetail}}).",
			Variables: map[string]string{
				"releaseName": "Name of the release",
				"team":        "Owning team",
				"date":        "Slot date",
				"timeDetail":  "Slot time window",
			},
			IsDefault: true,
		},
	}
}

// SeedDefaultTemplates inserts the default templates for any
// category that has none yet. Running it on every startup is safe.
func SeedDefaultTemplates(ctx context.Context, store Store) error {
	for _, tpl := range DefaultTemplates() {
		existing, err := store.GetEmailTemplates(ctx, tpl.Category)
		if err != nil {
			return err
		}
		found := false
		for _, e := range existing {
			if e.IsDefault {
				found = true
				break
			}
		}
		if found {
			continue
		}
		t := tpl
		if err := store.CreateEmailTemplate(ctx, &t); err != nil {
			return err
		}
	}
	return nil
}
