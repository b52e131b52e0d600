package s1o

import "github.com/caian-org/s1o/internal/errs"

// Category sentinels. Every concrete error type below wraps exactly one
// of these, so callers that only care about the broad class can match
// with errors.Is(err, s1o.ErrFormat) without switching on Kind.
var (
	ErrIO     = errs.ErrIO
	ErrFormat = errs.ErrFormat
	ErrAccess = errs.ErrAccess
	ErrState  = errs.ErrState
	ErrQuery  = errs.ErrQuery
	ErrBackup = errs.ErrBackup
)

// IOError, FormatError, AccessError, StateError, QueryError, and
// BackupError are the typed error shapes every failure mode in this
// module resolves to,
// grounded one-to-one on the original library's exception hierarchy:
// each preserves the same structured attributes (operation, errno,
// basepath, position, expected/actual, uid, slot) as fields rather than
// collapsing them into a formatted string.
type (
	IOError     = errs.IOError
	FormatError = errs.FormatError
	AccessError = errs.AccessError
	StateError  = errs.StateError
	QueryError  = errs.QueryError
	BackupError = errs.BackupError

	IOErrorKind     = errs.IOErrorKind
	FormatErrorKind = errs.FormatErrorKind
	AccessErrorKind = errs.AccessErrorKind
	StateErrorKind  = errs.StateErrorKind
	QueryErrorKind  = errs.QueryErrorKind
	BackupErrorKind = errs.BackupErrorKind
)

// Re-exported Kind constants, so callers never need to import the
// internal errs package directly.
const (
	KindIO              = errs.KindIO
	KindIncompleteRead  = errs.KindIncompleteRead
	KindIncompleteWrite = errs.KindIncompleteWrite

	KindBaseDataMismatch  = errs.KindBaseDataMismatch
	KindCheckDataMismatch = errs.KindCheckDataMismatch
	KindExtraMetaBytes    = errs.KindExtraMetaBytes
	KindExtraSlotBytes    = errs.KindExtraSlotBytes
	KindInconsistentMeta  = errs.KindInconsistentMeta
	KindInconsistentData  = errs.KindInconsistentData
	KindInconsistentIndex = errs.KindInconsistentIndex
	KindCheckSizeTooBig   = errs.KindCheckSizeTooBig
	KindIndexSizeTooBig   = errs.KindIndexSizeTooBig
	KindDimensionMismatch = errs.KindDimensionMismatch

	KindCreateWithoutWrite = errs.KindCreateWithoutWrite
	KindOpenWithSize       = errs.KindOpenWithSize
	KindReadOnly           = errs.KindReadOnly
	KindMmapped            = errs.KindMmapped
	KindNotMmapped         = errs.KindNotMmapped
	KindEmptyMmap          = errs.KindEmptyMmap
	KindExtensionsEqual    = errs.KindExtensionsEqual
	KindNoData             = errs.KindNoData
	KindInvalidWho         = errs.KindInvalidWho
	KindInvalidSlot        = errs.KindInvalidSlot
	KindInvalidNumSlots    = errs.KindInvalidNumSlots
	KindInvalidUID         = errs.KindInvalidUID
	KindInvalidDataSize    = errs.KindInvalidDataSize
	KindUnsortedData       = errs.KindUnsortedData
	KindPushMultiSlot      = errs.KindPushMultiSlot

	KindAlreadyInitialized      = errs.KindAlreadyInitialized
	KindNotInitialized          = errs.KindNotInitialized
	KindLocationDataUnavailable = errs.KindLocationDataUnavailable

	KindEmptyQuery       = errs.KindEmptyQuery
	KindMultipleResults  = errs.KindMultipleResults
	KindLocationMismatch = errs.KindLocationMismatch

	KindArchiveTruncated = errs.KindArchiveTruncated
	KindArchiveCorrupt   = errs.KindArchiveCorrupt
	KindUnknownEntry     = errs.KindUnknownEntry
)
