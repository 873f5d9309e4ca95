package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/config"
	"github.com/ndudarev/carpool-backend/internal/database"
	"github.com/ndudarev/carpool-backend/internal/middleware"
	"github.com/ndudarev/carpool-backend/internal/models"
	"github.com/ndudarev/carpool-backend/pkg/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	return config.Config{
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := testConfig()
	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/access-token", Login(db, cfg))
	api.POST("/auth/refresh-token", RefreshToken(db, cfg))
	api.POST("/users/register", Register(db))

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/users/me", GetProfile(db))
	protected.PATCH("/users/me", UpdateProfile(db))
	protected.DELETE("/users/me", DeleteProfile(db))
	protected.POST("/users/reset-password", ResetPassword(db))
	protected.GET("/users/:id", GetUser(db))

	protected.POST("/vehicles", CreateVehicle(db))
	protected.GET("/vehicles", GetVehicles(db))
	protected.PATCH("/vehicles/:id", UpdateVehicle(db))
	protected.DELETE("/vehicles/:id", DeleteVehicle(db))

	protected.POST("/rides", CreateRide(db))
	protected.GET("/rides/search", SearchRides(db))
	protected.GET("/rides/me", GetMyRides(db))
	protected.GET("/rides/:id", GetRide(db))
	protected.PATCH("/rides/:id", UpdateRide(db))
	protected.DELETE("/rides/:id", DeleteRide(db))
	protected.GET("/rides/me/:id/bookings", GetRideBookings(db))
	protected.POST("/rides/me/:id/bookings/:bookingId/approve", ApproveBooking(db))

	protected.POST("/bookings", CreateBooking(db))
	protected.GET("/bookings", GetMyBookings(db))
	protected.DELETE("/bookings/:id", DeleteBooking(db))

	protected.POST("/messages", SendMessage(db, nil))
	protected.GET("/rides/:id/messages", GetRideMessages(db))

	return r, db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:     email,
		Password:  "secret123",
		FirstName: "Test",
		LastName:  "User",
	}
	if err := user.HashPassword(); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func accessToken(t *testing.T, userID uint) string {
	t.Helper()

	pair, err := utils.GenerateTokenPair(userID, 30*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	return pair.AccessToken
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndDuplicateEmail(t *testing.T) {
	r, db := setupRouter(t)

	body := gin.H{
		"email":     "new@example.com",
		"password":  "secret123",
		"firstName": "Anna",
		"lastName":  "Petrova",
	}

	w := doJSON(t, r, "POST", "/api/users/register", "", body)
	if w.Code != 201 {
		t.Fatalf("register: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/api/users/register", "", body)
	if w.Code != 409 {
		t.Fatalf("duplicate register: status = %d, want 409", w.Code)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "new@example.com").Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Errorf("user rows = %d, want 1", count)
	}
}

func TestLogin(t *testing.T) {
	r, db := setupRouter(t)
	user := createUser(t, db, "login@example.com")

	w := doJSON(t, r, "POST", "/api/auth/access-token", "", gin.H{
		"email":    user.Email,
		"password": "secret123",
	})
	if w.Code != 200 {
		t.Fatalf("login: status = %d, body = %s", w.Code, w.Body.String())
	}

	var pair utils.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("login must return both tokens")
	}

	w = doJSON(t, r, "POST", "/api/auth/access-token", "", gin.H{
		"email":    user.Email,
		"password": "wrong-password",
	})
	if w.Code != 401 {
		t.Errorf("bad password: status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	r, db := setupRouter(t)
	user := createUser(t, db, "tokens@example.com")

	// No token
	w := doJSON(t, r, "GET", "/api/users/me", "", nil)
	if w.Code != 403 {
		t.Errorf("no token: status = %d, want 403", w.Code)
	}

	// Refresh token on an access-only endpoint
	pair, err := utils.GenerateTokenPair(user.ID, 30*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	w = doJSON(t, r, "GET", "/api/users/me", pair.RefreshToken, nil)
	if w.Code != 403 {
		t.Errorf("refresh token: status = %d, want 403", w.Code)
	}

	// Expired token
	expired, err := utils.GenerateTokenPair(user.ID, -time.Minute, -time.Minute)
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	w = doJSON(t, r, "GET", "/api/users/me", expired.AccessToken, nil)
	if w.Code != 403 {
		t.Errorf("expired token: status = %d, want 403", w.Code)
	}

	// Valid token
	w = doJSON(t, r, "GET", "/api/users/me", pair.AccessToken, nil)
	if w.Code != 200 {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	r, db := setupRouter(t)
	user := createUser(t, db, "refresh@example.com")

	pair, err := utils.GenerateTokenPair(user.ID, 30*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	w := doJSON(t, r, "POST", "/api/auth/refresh-token", "", gin.H{
		"refreshToken": pair.RefreshToken,
	})
	if w.Code != 200 {
		t.Fatalf("refresh: status = %d, body = %s", w.Code, w.Body.String())
	}

	// An access token is not accepted in place of a refresh token
	w = doJSON(t, r, "POST", "/api/auth/refresh-token", "", gin.H{
		"refreshToken": pair.AccessToken,
	})
	if w.Code != 403 {
		t.Errorf("access token as refresh: status = %d, want 403", w.Code)
	}
}

func TestCreateRideVehicleOwnership(t *testing.T) {
	r, db := setupRouter(t)
	driver := createUser(t, db, "driver@example.com")
	other := createUser(t, db, "other@example.com")

	vehicle := models.Vehicle{
		OwnerID:          other.ID,
		Make:             "Lada",
		VehicleModel:     "Vesta",
		Color:            "white",
		RegistrationDate: time.Now().AddDate(-2, 0, 0),
		Type:             models.VehicleTypeSedan,
		Seats:            4,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	body := gin.H{
		"departure":   "Moscow",
		"arrival":     "Tver",
		"departureAt": time.Now().Add(24 * time.Hour),
		"arrivalAt":   time.Now().Add(26 * time.Hour),
		"seats":       3,
		"price":       500,
		"vehicleId":   vehicle.ID,
	}

	w := doJSON(t, r, "POST", "/api/rides", accessToken(t, driver.ID), body)
	if w.Code != 400 {
		t.Errorf("foreign vehicle: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/rides", accessToken(t, other.ID), body)
	if w.Code != 201 {
		t.Errorf("own vehicle: status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestBookingFlowOverHTTP(t *testing.T) {
	r, db := setupRouter(t)
	driver := createUser(t, db, "driver@example.com")
	passenger := createUser(t, db, "passenger@example.com")

	driverToken := accessToken(t, driver.ID)
	passengerToken := accessToken(t, passenger.ID)

	w := doJSON(t, r, "POST", "/api/rides", driverToken, gin.H{
		"departure":    "Moscow",
		"arrival":      "Tver",
		"departureAt":  time.Now().Add(24 * time.Hour),
		"arrivalAt":    time.Now().Add(26 * time.Hour),
		"seats":        2,
		"price":        500,
		"withApproval": true,
	})
	if w.Code != 201 {
		t.Fatalf("create ride: status = %d, body = %s", w.Code, w.Body.String())
	}
	var ride models.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &ride); err != nil {
		t.Fatalf("decode ride: %v", err)
	}

	// Driver cannot book the own ride
	w = doJSON(t, r, "POST", "/api/bookings", driverToken, gin.H{"rideId": ride.ID, "seats": 1})
	if w.Code != 400 {
		t.Errorf("self booking: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/bookings", passengerToken, gin.H{"rideId": ride.ID, "seats": 2})
	if w.Code != 201 {
		t.Fatalf("book: status = %d, body = %s", w.Code, w.Body.String())
	}
	var booking models.Booking
	if err := json.Unmarshal(w.Body.Bytes(), &booking); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	if booking.Approved {
		t.Error("booking must start pending on an approval ride")
	}

	// Driver sees the booking on the ride
	w = doJSON(t, r, "GET", fmt.Sprintf("/api/rides/me/%d/bookings", ride.ID), driverToken, nil)
	if w.Code != 200 {
		t.Fatalf("list ride bookings: status = %d", w.Code)
	}

	// A stranger to the ride cannot list its bookings
	w = doJSON(t, r, "GET", fmt.Sprintf("/api/rides/me/%d/bookings", ride.ID), passengerToken, nil)
	if w.Code != 403 {
		t.Errorf("foreign ride bookings: status = %d, want 403", w.Code)
	}

	// Approve
	w = doJSON(t, r, "POST", fmt.Sprintf("/api/rides/me/%d/bookings/%d/approve", ride.ID, booking.ID), driverToken, nil)
	if w.Code != 200 {
		t.Fatalf("approve: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Ride now reports zero free seats
	w = doJSON(t, r, "GET", fmt.Sprintf("/api/rides/%d", ride.ID), passengerToken, nil)
	if w.Code != 200 {
		t.Fatalf("get ride: status = %d", w.Code)
	}
	var detail struct {
		FreeSeats int `json:"freeSeats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode ride detail: %v", err)
	}
	if detail.FreeSeats != 0 {
		t.Errorf("free seats = %d, want 0", detail.FreeSeats)
	}

	// Cancel
	w = doJSON(t, r, "DELETE", fmt.Sprintf("/api/bookings/%d", booking.ID), passengerToken, nil)
	if w.Code != 204 {
		t.Errorf("cancel booking: status = %d, want 204", w.Code)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/rides/%d", ride.ID), passengerToken, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode ride detail: %v", err)
	}
	if detail.FreeSeats != 2 {
		t.Errorf("free seats after cancel = %d, want 2", detail.FreeSeats)
	}
}

func TestVehicleCRUD(t *testing.T) {
	r, db := setupRouter(t)
	owner := createUser(t, db, "owner@example.com")
	stranger := createUser(t, db, "stranger@example.com")

	ownerToken := accessToken(t, owner.ID)

	w := doJSON(t, r, "POST", "/api/vehicles", ownerToken, gin.H{
		"make":             "Lada",
		"model":            "Vesta",
		"color":            "white",
		"registrationDate": time.Now().AddDate(-2, 0, 0),
		"type":             "sedan",
		"seats":            4,
	})
	if w.Code != 201 {
		t.Fatalf("create vehicle: status = %d, body = %s", w.Code, w.Body.String())
	}
	var vehicle models.Vehicle
	if err := json.Unmarshal(w.Body.Bytes(), &vehicle); err != nil {
		t.Fatalf("decode vehicle: %v", err)
	}

	// Unknown type is rejected before touching storage
	w = doJSON(t, r, "POST", "/api/vehicles", ownerToken, gin.H{
		"make":             "Lada",
		"model":            "Vesta",
		"color":            "white",
		"registrationDate": time.Now().AddDate(-2, 0, 0),
		"type":             "spaceship",
		"seats":            4,
	})
	if w.Code != 400 {
		t.Errorf("bad type: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, "PATCH", fmt.Sprintf("/api/vehicles/%d", vehicle.ID), accessToken(t, stranger.ID), gin.H{"color": "red"})
	if w.Code != 403 {
		t.Errorf("foreign patch: status = %d, want 403", w.Code)
	}

	w = doJSON(t, r, "PATCH", fmt.Sprintf("/api/vehicles/%d", vehicle.ID), ownerToken, gin.H{"color": "red"})
	if w.Code != 200 {
		t.Fatalf("patch: status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &vehicle); err != nil {
		t.Fatalf("decode vehicle: %v", err)
	}
	if vehicle.Color != "red" {
		t.Errorf("color = %q, want red", vehicle.Color)
	}

	w = doJSON(t, r, "DELETE", fmt.Sprintf("/api/vehicles/%d", vehicle.ID), ownerToken, nil)
	if w.Code != 204 {
		t.Errorf("delete: status = %d, want 204", w.Code)
	}
}

func TestDeleteVehicleClearsRideReference(t *testing.T) {
	r, db := setupRouter(t)
	driver := createUser(t, db, "driver@example.com")
	driverToken := accessToken(t, driver.ID)

	vehicle := models.Vehicle{
		OwnerID:          driver.ID,
		Make:             "Lada",
		VehicleModel:     "Vesta",
		Color:            "white",
		RegistrationDate: time.Now().AddDate(-2, 0, 0),
		Type:             models.VehicleTypeSedan,
		Seats:            4,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	ride := models.Ride{
		DriverID:    driver.ID,
		VehicleID:   &vehicle.ID,
		Departure:   "Moscow",
		Arrival:     "Tver",
		DepartureAt: time.Now().Add(24 * time.Hour),
		ArrivalAt:   time.Now().Add(26 * time.Hour),
		Seats:       3,
		Price:       500,
	}
	if err := db.Create(&ride).Error; err != nil {
		t.Fatalf("create ride: %v", err)
	}

	w := doJSON(t, r, "DELETE", fmt.Sprintf("/api/vehicles/%d", vehicle.ID), driverToken, nil)
	if w.Code != 204 {
		t.Fatalf("delete vehicle: status = %d", w.Code)
	}

	var reloaded models.Ride
	if err := db.First(&reloaded, ride.ID).Error; err != nil {
		t.Fatalf("reload ride: %v", err)
	}
	if reloaded.VehicleID != nil {
		t.Error("ride must lose its vehicle reference, not be deleted")
	}
}

func TestMessages(t *testing.T) {
	r, db := setupRouter(t)
	driver := createUser(t, db, "driver@example.com")
	passenger := createUser(t, db, "passenger@example.com")
	stranger := createUser(t, db, "stranger@example.com")

	ride := models.Ride{
		DriverID:    driver.ID,
		Departure:   "Moscow",
		Arrival:     "Tver",
		DepartureAt: time.Now().Add(24 * time.Hour),
		ArrivalAt:   time.Now().Add(26 * time.Hour),
		Seats:       3,
		Price:       500,
	}
	if err := db.Create(&ride).Error; err != nil {
		t.Fatalf("create ride: %v", err)
	}
	booking := models.Booking{
		RideID:      ride.ID,
		PassengerID: passenger.ID,
		Seats:       1,
		FilledAt:    time.Now(),
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}

	w := doJSON(t, r, "POST", "/api/messages", accessToken(t, passenger.ID), gin.H{
		"rideId":      ride.ID,
		"recipientId": driver.ID,
		"body":        "Can I bring a suitcase?",
	})
	if w.Code != 201 {
		t.Fatalf("send message: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/api/messages", accessToken(t, stranger.ID), gin.H{
		"rideId":      ride.ID,
		"recipientId": driver.ID,
		"body":        "hello",
	})
	if w.Code != 403 {
		t.Errorf("stranger message: status = %d, want 403", w.Code)
	}

	// The recipient must also be on the ride
	w = doJSON(t, r, "POST", "/api/messages", accessToken(t, passenger.ID), gin.H{
		"rideId":      ride.ID,
		"recipientId": stranger.ID,
		"body":        "hello",
	})
	if w.Code != 400 {
		t.Errorf("stranger recipient: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/rides/%d/messages", ride.ID), accessToken(t, driver.ID), nil)
	if w.Code != 200 {
		t.Fatalf("list messages: status = %d", w.Code)
	}
	var messages []models.Message
	if err := json.Unmarshal(w.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 1 {
		t.Errorf("messages = %d, want 1", len(messages))
	}
}

func TestDeleteProfileCascades(t *testing.T) {
	r, db := setupRouter(t)
	driver := createUser(t, db, "driver@example.com")
	passenger := createUser(t, db, "passenger@example.com")

	vehicle := models.Vehicle{
		OwnerID:          driver.ID,
		Make:             "Lada",
		VehicleModel:     "Vesta",
		Color:            "white",
		RegistrationDate: time.Now().AddDate(-2, 0, 0),
		Type:             models.VehicleTypeSedan,
		Seats:            4,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	ride := models.Ride{
		DriverID:    driver.ID,
		VehicleID:   &vehicle.ID,
		Departure:   "Moscow",
		Arrival:     "Tver",
		DepartureAt: time.Now().Add(24 * time.Hour),
		ArrivalAt:   time.Now().Add(26 * time.Hour),
		Seats:       3,
		Price:       500,
	}
	if err := db.Create(&ride).Error; err != nil {
		t.Fatalf("create ride: %v", err)
	}
	booking := models.Booking{
		RideID:      ride.ID,
		PassengerID: passenger.ID,
		Seats:       1,
		FilledAt:    time.Now(),
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}

	w := doJSON(t, r, "DELETE", "/api/users/me", accessToken(t, driver.ID), nil)
	if w.Code != 204 {
		t.Fatalf("delete profile: status = %d, body = %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Ride{}).Where("driver_id = ?", driver.ID).Count(&count)
	if count != 0 {
		t.Errorf("rides left = %d, want 0", count)
	}
	db.Model(&models.Booking{}).Where("ride_id = ?", ride.ID).Count(&count)
	if count != 0 {
		t.Errorf("bookings left = %d, want 0", count)
	}
	db.Model(&models.Vehicle{}).Where("owner_id = ?", driver.ID).Count(&count)
	if count != 0 {
		t.Errorf("vehicles left = %d, want 0", count)
	}
	db.Model(&models.User{}).Where("id = ?", passenger.ID).Count(&count)
	if count != 1 {
		t.Errorf("passenger rows = %d, want 1", count)
	}
}

func TestUserPasswordNotPersisted(t *testing.T) {
	_, db := setupRouter(t)
	user := createUser(t, db, "plain@example.com")

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Password != "" {
		t.Error("plaintext password must not be stored")
	}
	if err := reloaded.CheckPassword("secret123"); err != nil {
		t.Errorf("password hash does not verify: %v", err)
	}
}

func TestCreateRideWithoutApprovalPersists(t *testing.T) {
	r, db := setupRouter(t)
	driver := createUser(t, db, "driver@example.com")
	driverToken := accessToken(t, driver.ID)

	w := doJSON(t, r, "POST", "/api/rides", driverToken, gin.H{
		"departure":    "Moscow",
		"arrival":      "Tver",
		"departureAt":  time.Now().Add(24 * time.Hour),
		"arrivalAt":    time.Now().Add(26 * time.Hour),
		"seats":        4,
		"price":        500,
		"withApproval": false,
	})
	if w.Code != 201 {
		t.Fatalf("create ride: status = %d, body = %s", w.Code, w.Body.String())
	}
	var ride models.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &ride); err != nil {
		t.Fatalf("decode ride: %v", err)
	}

	var stored models.Ride
	if err := db.First(&stored, ride.ID).Error; err != nil {
		t.Fatalf("reload ride: %v", err)
	}
	if stored.WithApproval {
		t.Error("ride created with withApproval=false stored as true")
	}

	// Omitting the field keeps the default
	w = doJSON(t, r, "POST", "/api/rides", driverToken, gin.H{
		"departure":   "Moscow",
		"arrival":     "Kazan",
		"departureAt": time.Now().Add(24 * time.Hour),
		"arrivalAt":   time.Now().Add(36 * time.Hour),
		"seats":       2,
		"price":       900,
	})
	if w.Code != 201 {
		t.Fatalf("create default ride: status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ride); err != nil {
		t.Fatalf("decode ride: %v", err)
	}
	stored = models.Ride{}
	if err := db.First(&stored, ride.ID).Error; err != nil {
		t.Fatalf("reload ride: %v", err)
	}
	if !stored.WithApproval {
		t.Error("ride created without withApproval must default to true")
	}
}

func TestVehiclePlateValidation(t *testing.T) {
	r, db := setupRouter(t)
	owner := createUser(t, db, "owner@example.com")
	ownerToken := accessToken(t, owner.ID)

	body := gin.H{
		"make":             "Lada",
		"model":            "Vesta",
		"color":            "white",
		"registrationDate": time.Now().AddDate(-2, 0, 0),
		"type":             "sedan",
		"seats":            4,
		"regPlate":         "not-a-plate-%%%",
	}
	w := doJSON(t, r, "POST", "/api/vehicles", ownerToken, body)
	if w.Code != 400 {
		t.Errorf("garbage plate: status = %d, want 400", w.Code)
	}

	body["regPlate"] = "А123ВС77"
	w = doJSON(t, r, "POST", "/api/vehicles", ownerToken, body)
	if w.Code != 201 {
		t.Fatalf("valid plate: status = %d, body = %s", w.Code, w.Body.String())
	}
	var vehicle models.Vehicle
	if err := json.Unmarshal(w.Body.Bytes(), &vehicle); err != nil {
		t.Fatalf("decode vehicle: %v", err)
	}
	if vehicle.RegPlate == nil || *vehicle.RegPlate != "А123ВС77" {
		t.Errorf("plate not persisted: %v", vehicle.RegPlate)
	}

	w = doJSON(t, r, "PATCH", fmt.Sprintf("/api/vehicles/%d", vehicle.ID), ownerToken,
		gin.H{"regPlate": "abc"})
	if w.Code != 400 {
		t.Errorf("patch garbage plate: status = %d, want 400", w.Code)
	}
}

func TestUpdateRideTimeWindow(t *testing.T) {
	r, db := setupRouter(t)
	driver := createUser(t, db, "driver@example.com")
	driverToken := accessToken(t, driver.ID)

	w := doJSON(t, r, "POST", "/api/rides", driverToken, gin.H{
		"departure":   "Moscow",
		"arrival":     "Tver",
		"departureAt": time.Now().Add(24 * time.Hour),
		"arrivalAt":   time.Now().Add(26 * time.Hour),
		"seats":       2,
		"price":       500,
	})
	if w.Code != 201 {
		t.Fatalf("create ride: status = %d", w.Code)
	}
	var ride models.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &ride); err != nil {
		t.Fatalf("decode ride: %v", err)
	}
	path := fmt.Sprintf("/api/rides/%d", ride.ID)

	w = doJSON(t, r, "PATCH", path, driverToken,
		gin.H{"departureAt": time.Now().Add(-time.Hour)})
	if w.Code != 400 {
		t.Errorf("past departure: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, "PATCH", path, driverToken,
		gin.H{"arrivalAt": time.Now().Add(time.Hour)})
	if w.Code != 400 {
		t.Errorf("arrival before departure: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, "PATCH", path, driverToken, gin.H{
		"departureAt": time.Now().Add(48 * time.Hour),
		"arrivalAt":   time.Now().Add(50 * time.Hour),
	})
	if w.Code != 200 {
		t.Errorf("valid window: status = %d, body = %s", w.Code, w.Body.String())
	}
}
