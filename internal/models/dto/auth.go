package dto

type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Username         string `json:"username"`
	DateOfBirth      string `json:"dateOfBirth"`
	Gender           string `json:"gender"`
	FaceEncodingData string `json:"faceEncodingData,omitempty"`
}

type LoginRequest struct {
	Email              string `json:"email"`
	Password           string `json:"password,omitempty"`
	TwoFactorCode      string `json:"twoFactorCode,omitempty"`
	UseFaceRecognition bool   `json:"useFaceRecognition"`
	FaceData           string `json:"faceData,omitempty"`
}

type FaceRegistrationRequest struct {
	FaceEncodingData string `json:"faceEncodingData"`
}

type TwoFactorResponse struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauthUrl"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}
