package models

import (
	"strings"

	dErrors "mandate/pkg/domain-errors"
)

// VerificationMethod selects how a claim will be verified, and with it the
// proof variant the claim must carry.
type VerificationMethod string

const (
	MethodDocumentUpload    VerificationMethod = "document_upload"
	MethodEmailVerification VerificationMethod = "email_verification"
	MethodOfficialLink      VerificationMethod = "official_link"
)

func ParseVerificationMethod(raw string) (VerificationMethod, error) {
	switch VerificationMethod(raw) {
	case MethodDocumentUpload, MethodEmailVerification, MethodOfficialLink:
		return VerificationMethod(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown verification method: "+raw)
	}
}

// ProofKind discriminates the proof variant.
type ProofKind string

const (
	ProofKindDocument ProofKind = "document"
	ProofKindEmail    ProofKind = "email"
	ProofKindLink     ProofKind = "link"
)

// Proof is a tagged variant: exactly one payload field is set, selected by
// Kind. Replaces the source data's open bag of optional sub-fields so
// downstream code never does field-presence checks.
type Proof struct {
	Kind  ProofKind `json:"kind"`
	URL   string    `json:"url,omitempty"`   // document or official-site URL
	Email string    `json:"email,omitempty"` // official government address
}

// DocumentProof references an uploaded proof document by its blob URL.
func DocumentProof(url string) Proof {
	return Proof{Kind: ProofKindDocument, URL: url}
}

// EmailProof references an official government email address.
func EmailProof(address string) Proof {
	return Proof{Kind: ProofKindEmail, Email: address}
}

// LinkProof references an official government website listing the holder.
func LinkProof(url string) Proof {
	return Proof{Kind: ProofKindLink, URL: url}
}

// kindFor maps a verification method to the proof kind it requires.
func kindFor(method VerificationMethod) (ProofKind, error) {
	switch method {
	case MethodDocumentUpload:
		return ProofKindDocument, nil
	case MethodEmailVerification:
		return ProofKindEmail, nil
	case MethodOfficialLink:
		return ProofKindLink, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown verification method: "+string(method))
	}
}

// Validate checks that the proof variant matches the verification method and
// carries its payload.
func (p Proof) Validate(method VerificationMethod) error {
	required, err := kindFor(method)
	if err != nil {
		return err
	}
	if p.Kind != required {
		return dErrors.New(dErrors.CodeValidation, "proof kind does not match verification method")
	}
	switch p.Kind {
	case ProofKindDocument, ProofKindLink:
		if strings.TrimSpace(p.URL) == "" {
			return dErrors.New(dErrors.CodeValidation, "proof URL is required")
		}
	case ProofKindEmail:
		if !strings.Contains(p.Email, "@") {
			return dErrors.New(dErrors.CodeValidation, "proof email address is invalid")
		}
	}
	return nil
}
