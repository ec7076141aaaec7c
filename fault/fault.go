// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"github.com/pkg/errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ConflictError GenericError
type ExistsError GenericError
type InvalidError GenericError
type LagError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
//
// upper case values are reason codes returned unchanged to callers
var (
	ErrAlreadyConfirmed         = ConflictError("ALREADY_CONFIRMED")
	ErrAlreadyRecalled          = ConflictError("ALREADY_RECALLED")
	ErrAlreadySold              = ConflictError("ALREADY_SOLD")
	ErrAlreadyVerifiedByRole    = ConflictError("ALREADY_VERIFIED_BY_ROLE")
	ErrAlreadyVerifiedByUser    = ConflictError("ALREADY_VERIFIED_BY_USER")
	ErrAssemblyFailed           = ProcessError("assembly failed")
	ErrBlockNotFound            = NotFoundError("block not found")
	ErrChainBroken              = ConflictError("CHAIN_BROKEN")
	ErrConfigurationNotTable    = InvalidError("configuration must return a table")
	ErrCreatorCannotVerifyOwn   = ConflictError("CREATOR_CANNOT_VERIFY_OWN")
	ErrIllegalSale              = ConflictError("ILLEGAL_SALE")
	ErrIllegalTransfer          = ConflictError("ILLEGAL_TRANSFER")
	ErrIndexWriteFailed         = LagError("index write failed")
	ErrInsufficientStock        = ConflictError("INSUFFICIENT_STOCK")
	ErrInvalidAmount            = InvalidError("INVALID_AMOUNT")
	ErrInvalidDate              = InvalidError("invalid date")
	ErrInvalidDigest            = InvalidError("invalid digest")
	ErrInvalidIdentifier        = InvalidError("invalid identifier")
	ErrInvalidInterval          = InvalidError("invalid interval")
	ErrInvalidMetadata          = InvalidError("invalid metadata")
	ErrInvalidName              = InvalidError("product name is required")
	ErrInvalidPrice             = InvalidError("INVALID_PRICE")
	ErrInvalidQuantity          = InvalidError("INVALID_QUANTITY")
	ErrInvalidRole              = InvalidError("invalid role")
	ErrInvalidScore             = InvalidError("INVALID_SCORE")
	ErrInvalidSeed              = InvalidError("invalid signing seed")
	ErrInvalidSignature         = InvalidError("invalid signature")
	ErrInvalidStructPointer     = InvalidError("invalid struct pointer")
	ErrLinkageWriteFailed       = LagError("linkage write failed")
	ErrMissingParameters        = InvalidError("missing parameters")
	ErrNotCreatorOrOwner        = ConflictError("NOT_CREATOR_OR_OWNER")
	ErrNotOwner                 = ConflictError("NOT_OWNER")
	ErrNotProducer              = ConflictError("NOT_PRODUCER")
	ErrNotTransferred           = ConflictError("NOT_TRANSFERRED")
	ErrParticipantNotRegistered = InvalidError("PARTICIPANT_NOT_REGISTERED")
	ErrPoolUnavailable          = ProcessError("pending pool unavailable")
	ErrProductNotFound          = NotFoundError("PRODUCT_NOT_FOUND")
	ErrProductRecalled          = ConflictError("PRODUCT_RECALLED")
	ErrReconstructedProduct     = ConflictError("RECONSTRUCTED_PRODUCT")
	ErrRecordNotFound           = NotFoundError("record not found")
	ErrReservedMetadataKey      = InvalidError("RESERVED_METADATA_KEY")
	ErrRoleCannotVerify         = ConflictError("ROLE_CANNOT_VERIFY")
	ErrSameParticipant          = InvalidError("SAME_PARTICIPANT")
	ErrSigningFailed            = ProcessError("signing failed")
	ErrStorageClosed            = ProcessError("storage closed")
	ErrTransactionAlreadyExists = ExistsError("transaction already exists")
	ErrTransactionHashMismatch  = ConflictError("TRANSACTION_HASH_MISMATCH")
	ErrUnbackedProductState     = LagError("product state written without ledger record")
	ErrUnknownActionType        = InvalidError("unknown action type")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ConflictError) Error() string { return string(e) }
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LagError) Error() string      { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error, looking through any wrapping
func IsErrConflict(e error) bool { _, ok := errors.Cause(e).(ConflictError); return ok }
func IsErrExists(e error) bool   { _, ok := errors.Cause(e).(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := errors.Cause(e).(InvalidError); return ok }
func IsErrLag(e error) bool      { _, ok := errors.Cause(e).(LagError); return ok }
func IsErrNotFound(e error) bool { _, ok := errors.Cause(e).(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := errors.Cause(e).(ProcessError); return ok }

// Code - the reason code of an error with any wrapping context removed
func Code(e error) string {
	if nil == e {
		return ""
	}
	return errors.Cause(e).Error()
}
