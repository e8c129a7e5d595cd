package model

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewAPIError(errReason error) APIError {
	switch errReason.Error() {
	case "INVALID_REQUEST":
		return APIError{
			Code:    "INVALID_REQUEST",
			Message: "repository URL is required",
		}

	case "INVALID_REPOSITORY_URL":
		return APIError{
			Code:    "INVALID_REPOSITORY_URL",
			Message: "could not parse GitHub repository URL. expected format: https://github.com/<owner>/<repository>",
		}

	case "REPOSITORY_NOT_FOUND":
		return APIError{
			Code:    "REPOSITORY_NOT_FOUND",
			Message: "repository not found. check the URL or make sure the repository is public",
		}

	case "RATE_LIMIT_REACHED":
		return APIError{
			Code:    "RATE_LIMIT_REACHED",
			Message: "github rate limit reached. consider using a token to increase the limit or wait few minutes and try again",
		}

	default:
		return APIError{
			Code:    "METADATA_FETCH_ERROR",
			Message: "unable to fetch repository data. wait few minutes and try again or contact our support with the reason code for assistance",
		}
	}
}
