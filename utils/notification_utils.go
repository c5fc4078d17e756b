package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/models"
)

// SaveNotification saves an in-app notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}

// SendFCMNotification sends a Firebase push notification to a user's
// registered device. Users without an FCM token are skipped.
func SendFCMNotification(db *mongo.Client, userID primitive.ObjectID, title, message string, data map[string]string) error {
	var user models.User
	err := config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.FCMToken == "" {
		log.Printf("User %s has no FCM token, skipping push", userID.Hex())
		return nil
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: data,
	}

	if _, err := client.Send(ctx, fcmMessage); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}

// NotifyRequestResolved notifies the requester by in-app notification and FCM
// push that their settings change request was approved or rejected.
func NotifyRequestResolved(db *mongo.Client, request models.ChangeRequest) {
	title := fmt.Sprintf("Change Request %s", request.Status)
	message := fmt.Sprintf("Your %s settings change request has been %s.", request.Domain, request.Status)

	if err := SaveNotification(db, request.RequestedByID, title, message, "change_request_resolved", map[string]interface{}{
		"requestId": request.ID.Hex(),
		"domain":    string(request.Domain),
		"status":    request.Status,
	}); err != nil {
		log.Printf("Failed to save notification for request %s: %v", request.ID.Hex(), err)
	}

	if err := SendFCMNotification(db, request.RequestedByID, title, message, map[string]string{
		"type":      "change_request_resolved",
		"requestId": request.ID.Hex(),
		"domain":    string(request.Domain),
		"status":    request.Status,
	}); err != nil {
		log.Printf("Failed to push notification for request %s: %v", request.ID.Hex(), err)
	}
}

// SendPayrollSummaryEmail emails the payroll run summary to the actor who
// triggered it. Failures are logged, never fatal to the run.
func SendPayrollSummaryEmail(toEmail string, result models.SalaryRunResult) {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}
	if smtpHost == "" || toEmail == "" {
		return
	}

	subject := fmt.Sprintf("Salary Payout Completed: %s", result.Period)
	body := fmt.Sprintf("The salary payout for %s has been processed.\n\nUsers paid: %d\nTotal amount: %.2f\nBatch ID: %s\n",
		result.Period, result.UsersPaid, result.TotalAmount, result.PayoutID)

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send payroll summary email: %v", err)
	}
}
