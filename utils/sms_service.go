package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSService sends OTP messages through the bulk SMS gateway used for staff
// onboarding verification.
type SMSService struct {
	Username string
	Password string
	SenderID string
	APIPath  string
	Client   *http.Client
}

// SMSResponse represents the gateway response
type SMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Cost      string `json:"cost"`
	} `json:"data"`
}

// NewSMSService creates a new SMS service instance from environment config.
func NewSMSService() *SMSService {
	return &SMSService{
		Username: os.Getenv("SMS_USERNAME"),
		Password: os.Getenv("SMS_PASSWORD"),
		SenderID: os.Getenv("SMS_SENDER_ID"),
		APIPath:  os.Getenv("SMS_API_URL"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendOTP sends an OTP message to the given phone number.
func (s *SMSService) SendOTP(phoneNumber, message string) error {
	if s.APIPath == "" {
		return fmt.Errorf("SMS_API_URL is not configured")
	}

	params := url.Values{}
	params.Set("username", s.Username)
	params.Set("password", s.Password)
	params.Set("senderid", s.SenderID)
	params.Set("destination", phoneNumber)
	params.Set("message", message)

	fullURL := fmt.Sprintf("%s?%s", s.APIPath, params.Encode())

	req, err := http.NewRequest("POST", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// Some gateway routes answer with a bare text body on success
		responseStr := strings.TrimSpace(string(body))
		if strings.Contains(strings.ToLower(responseStr), "success") ||
			strings.Contains(strings.ToLower(responseStr), "sent") {
			log.Printf("SMS sent to %s (non-JSON response): %s", phoneNumber, responseStr)
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if smsResp.Status == "success" || smsResp.Status == "sent" {
		log.Printf("SMS sent to %s, message ID: %s", phoneNumber, smsResp.Data.MessageID)
		return nil
	}

	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}

// SendOTPViaSMS sends a 6-digit onboarding OTP to a staff phone number.
func SendOTPViaSMS(phone string, otp string) error {
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	message := fmt.Sprintf("Your verification code is: %s. This code will expire in 10 minutes.", otp)
	smsService := NewSMSService()
	return smsService.SendOTP(phone, message)
}
