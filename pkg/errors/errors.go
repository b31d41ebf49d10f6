package errors

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	grpccodes "google.golang.org/grpc/codes"
)

// Code is the type representing a namespace error code.
type Code[MT any] struct {
	Code     uint16
	Name     string
	GrpcCode grpccodes.Code
}

// New creates a new error with the given code and the message
func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: cause,
	}
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

// Is reports whether err carries this code.
func (c Code[MT]) Is(err error) bool {
	coded, ok := err.(Error)
	if !ok {
		return false
	}
	return coded.Code() == c.Code && coded.CodeName() == c.Name
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	GrpcCode() grpccodes.Code
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
}

// ErrorImpl is the default concrete implementation of TypedError.
type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	// convert any metadata to map[string]string
	metadata := make(map[string]string)
	buf, err := json.Marshal(e.metadata)
	if err == nil {
		var genericMap map[string]any
		if err := json.Unmarshal(buf, &genericMap); err == nil {
			for k, v := range genericMap {
				vStr := ""
				if v != nil {
					vStr = fmt.Sprintf("%v", v)
				}
				metadata[k] = vStr
			}
		}
	}
	return metadata
}

func (e *ErrorImpl[MT]) GrpcCode() grpccodes.Code {
	return e.code.GrpcCode
}

func (e *ErrorImpl[MT]) Code() uint16 {
	return e.code.Code
}

func (e *ErrorImpl[MT]) CodeName() string {
	return e.code.Name
}

// Error() implements the error interface.
func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type AssetMetadata struct {
	Asset string `json:"asset"`
}

type PriceMetadata struct {
	Asset string `json:"asset"`
	Price uint64 `json:"price"`
}

type OwnerMetadata struct {
	Asset  string `json:"asset"`
	Caller string `json:"caller"`
	Owner  string `json:"owner"`
}

type ApprovalMetadata struct {
	Asset    string `json:"asset"`
	Operator string `json:"operator"`
}

type ListingMetadata struct {
	Asset  string `json:"asset"`
	Seller string `json:"seller"`
	Price  uint64 `json:"price"`
}

type PaymentMetadata struct {
	Asset   string `json:"asset"`
	Offered uint64 `json:"offered"`
	Price   uint64 `json:"price"`
}

type SellerMetadata struct {
	Asset  string `json:"asset"`
	Caller string `json:"caller"`
	Seller string `json:"seller"`
}

type TransferMetadata struct {
	Asset string `json:"asset"`
	From  string `json:"from"`
	To    string `json:"to"`
	Stage string `json:"stage"`
}

type AssetRefMetadata struct {
	Ref string `json:"ref"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", grpccodes.Internal}
var INVALID_PRICE = Code[PriceMetadata]{1, "INVALID_PRICE", grpccodes.InvalidArgument}
var NOT_OWNER = Code[OwnerMetadata]{2, "NOT_OWNER", grpccodes.PermissionDenied}
var NOT_APPROVED = Code[ApprovalMetadata]{3, "NOT_APPROVED", grpccodes.FailedPrecondition}
var ALREADY_LISTED = Code[ListingMetadata]{4, "ALREADY_LISTED", grpccodes.AlreadyExists}
var NOT_LISTED = Code[AssetMetadata]{5, "NOT_LISTED", grpccodes.NotFound}

var INSUFFICIENT_PAYMENT = Code[PaymentMetadata]{
	6,
	"INSUFFICIENT_PAYMENT",
	grpccodes.InvalidArgument,
}

var NOT_SELLER = Code[SellerMetadata]{7, "NOT_SELLER", grpccodes.PermissionDenied}

var EXTERNAL_TRANSFER_FAILED = Code[TransferMetadata]{
	8,
	"EXTERNAL_TRANSFER_FAILED",
	grpccodes.Aborted,
}

var INVALID_ASSET_REF = Code[AssetRefMetadata]{9, "INVALID_ASSET_REF", grpccodes.InvalidArgument}
