package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pharmacy-backend/models"
	"pharmacy-backend/storage"
	"pharmacy-backend/utils"
)

// CreateUser creates a buyer-side user account
// @Summary Create user
// @Description Create a new user with a bcrypt-hashed password
// @Tags Users
// @Accept json
// @Produce json
// @Param user body models.User true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/create_user [post]
func CreateUser(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		if user.Email == "" || user.Password == "" || user.FirstName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and first_name are required"})
			return
		}

		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password", "details": err.Error()})
			return
		}

		if user.RoleID == 0 {
			user.RoleID = 2 // buyer
		}

		query := `
			INSERT INTO users (employee_id, email, password, first_name, last_name, is_admin, phone_no, role_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			RETURNING id
		`
		err = db.QueryRow(query,
			user.EmployeeId, strings.ToLower(user.Email), hashed, user.FirstName,
			user.LastName, user.IsAdmin, user.PhoneNo, user.RoleID,
		).Scan(&user.ID)
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
			return
		}

		user.Password = ""
		c.JSON(http.StatusCreated, user)

		activity := models.ActivityLog{
			EventContext:      "User",
			EventName:         "Create",
			Description:       "Created user " + user.FirstName,
			UserName:          userName,
			HostName:          session.HostName,
			IPAddress:         session.IPAddress,
			CreatedAt:         time.Now(),
			AffectedUserName:  user.FirstName,
			AffectedUserEmail: user.Email,
		}
		if logErr := SaveActivityLog(db, activity); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}

// UpdateUser updates user profile fields
// @Summary Update user
// @Description Update user fields, re-hashing the password when one is sent
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body models.User true "User data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/update_user/{id} [put]
func UpdateUser(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		userID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		var input struct {
			Email     *string `json:"email"`
			Password  *string `json:"password"`
			FirstName *string `json:"first_name"`
			LastName  *string `json:"last_name"`
			PhoneNo   *string `json:"phone_no"`
			RoleID    *int    `json:"role_id"`
			IsAdmin   *bool   `json:"is_admin"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		updates := []string{}
		values := []interface{}{}
		placeholderIndex := 1

		if input.Email != nil {
			updates = append(updates, "email = $"+strconv.Itoa(placeholderIndex))
			values = append(values, strings.ToLower(*input.Email))
			placeholderIndex++
		}
		if input.Password != nil && *input.Password != "" {
			hashed, err := utils.HashPassword(*input.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password", "details": err.Error()})
				return
			}
			updates = append(updates, "password = $"+strconv.Itoa(placeholderIndex))
			values = append(values, hashed)
			placeholderIndex++
		}
		if input.FirstName != nil {
			updates = append(updates, "first_name = $"+strconv.Itoa(placeholderIndex))
			values = append(values, *input.FirstName)
			placeholderIndex++
		}
		if input.LastName != nil {
			updates = append(updates, "last_name = $"+strconv.Itoa(placeholderIndex))
			values = append(values, *input.LastName)
			placeholderIndex++
		}
		if input.PhoneNo != nil {
			updates = append(updates, "phone_no = $"+strconv.Itoa(placeholderIndex))
			values = append(values, *input.PhoneNo)
			placeholderIndex++
		}
		if input.RoleID != nil {
			updates = append(updates, "role_id = $"+strconv.Itoa(placeholderIndex))
			values = append(values, *input.RoleID)
			placeholderIndex++
		}
		if input.IsAdmin != nil {
			updates = append(updates, "is_admin = $"+strconv.Itoa(placeholderIndex))
			values = append(values, *input.IsAdmin)
			placeholderIndex++
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
			return
		}

		updates = append(updates, "updated_at = NOW()")
		query := "UPDATE users SET " + strings.Join(updates, ", ") + " WHERE id = $" + strconv.Itoa(placeholderIndex)
		values = append(values, userID)

		res, err := db.Exec(query, values...)
		if err != nil {
			log.Printf("Failed to update user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "details": err.Error()})
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		utils.SuccessResponse(c, "User updated successfully", http.StatusOK)

		activity := models.ActivityLog{
			EventContext: "User",
			EventName:    "Update",
			Description:  "Updated user " + strconv.Itoa(userID),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, activity); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}

// GetUsers lists all users
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /api/users [get]
func GetUsers(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		if _, _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		rows, err := db.Query(`
			SELECT u.id, u.employee_id, u.email, u.first_name, u.last_name, u.is_admin,
			       u.phone_no, u.role_id, r.role_name, u.created_at, u.updated_at
			FROM users u
			JOIN roles r ON u.role_id = r.role_id
			ORDER BY u.id
		`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users", "details": err.Error()})
			return
		}
		defer rows.Close()

		users := []models.User{}
		for rows.Next() {
			var u models.User
			var employeeID, phoneNo sql.NullString
			if err := rows.Scan(&u.ID, &employeeID, &u.Email, &u.FirstName, &u.LastName,
				&u.IsAdmin, &phoneNo, &u.RoleID, &u.RoleName, &u.CreatedAt, &u.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user", "details": err.Error()})
				return
			}
			u.EmployeeId = getStringOrEmpty(employeeID)
			u.PhoneNo = getStringOrEmpty(phoneNo)
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read users", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

// GetUserFromSession returns the user behind the current session
// @Summary Get current user
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /api/get_user [get]
func GetUserFromSession(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		user.Password = ""
		c.JSON(http.StatusOK, user)
	}
}

// DeleteUser removes a user account and its sessions
// @Summary Delete user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/delete_user/{id} [delete]
func DeleteUser(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		userID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}

		if _, err := db.Exec(`DELETE FROM session WHERE user_id = $1`, userID); err != nil {
			log.Printf("Failed to delete sessions for user %d: %v", userID, err)
		}

		res, err := db.Exec(`DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user", "details": err.Error()})
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		utils.SuccessResponse(c, "User deleted successfully", http.StatusOK)

		activity := models.ActivityLog{
			EventContext: "User",
			EventName:    "Delete",
			Description:  "Deleted user " + strconv.Itoa(userID),
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
		}
		if logErr := SaveActivityLog(db, activity); logErr != nil {
			log.Printf("Failed to log activity: %v", logErr)
		}
	}
}
