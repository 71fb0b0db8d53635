package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/model"
	"gorm.io/gorm"
)

// AdminAuditLog creates an audit log entry for admin actions. Attach after
// RequireAdmin so the acting admin is available in the request context.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminUser, ok := GetUser(c)
		if !ok || adminUser == nil {
			return c.Next() // Continue without logging if user not found
		}

		// Parse resource ID from params if available
		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsedID, err := strconv.ParseUint(id, 10, 32); err == nil {
				resourceID = uint(parsedID)
			}
		}

		// Capture request body as the "new value"
		var newValue interface{}
		if c.Method() == "POST" || c.Method() == "PUT" {
			body := c.Body()
			if len(body) > 0 {
				json.Unmarshal(body, &newValue)
			}
		}

		// For destructive or mutating calls, capture the existing state
		var oldValue interface{}
		if resourceID > 0 && (c.Method() == "DELETE" || c.Method() == "PUT" || c.Method() == "POST") {
			switch resource {
			case "subscriptions":
				var sub model.Subscription
				if err := db.First(&sub, resourceID).Error; err == nil {
					oldValue = sub
				}
			case "courses":
				var course model.Course
				if err := db.First(&course, resourceID).Error; err == nil {
					oldValue = course
				}
			case "videos":
				var video model.Video
				if err := db.First(&video, resourceID).Error; err == nil {
					oldValue = video
				}
			case "users":
				var user model.User
				if err := db.First(&user, resourceID).Error; err == nil {
					oldValue = user
				}
			case "course_passwords":
				var pw model.CoursePassword
				if err := db.First(&pw, resourceID).Error; err == nil {
					oldValue = pw
				}
			}
		}

		// Execute the actual handler
		err := c.Next()

		adminID := adminUser.ID
		ip := c.IP()
		userAgent := c.Get("User-Agent")
		description := c.Method() + " " + c.Path()

		// Log the action after completion
		go func() {
			oldValueJSON, _ := json.Marshal(oldValue)
			newValueJSON, _ := json.Marshal(newValue)

			auditLog := model.AdminAuditLog{
				AdminID:     adminID,
				Action:      action,
				Resource:    resource,
				ResourceID:  resourceID,
				OldValue:    oldValueJSON,
				NewValue:    newValueJSON,
				IPAddress:   ip,
				UserAgent:   userAgent,
				Description: description,
			}

			db.Create(&auditLog)
		}()

		return err
	}
}
