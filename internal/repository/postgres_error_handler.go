package repository

import (
	"errors"
	"strings"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

// handlePostgreSQLError converts PostgreSQL-specific errors to appropriate AppError codes
func handlePostgreSQLError(err error, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.Wrap(err, apperrors.CodeInternal, operation)
	}

	switch pgErr.Code {
	case "23505": // UNIQUE_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeConflict, operation+": "+resourceName(pgErr.ConstraintName)+" already exists")

	case "23503": // FOREIGN_KEY_VIOLATION
		return handleForeignKeyViolation(pgErr, operation)

	case "23502": // NOT_NULL_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, operation+": required field "+pgErr.ColumnName+" is missing")

	case "23514": // CHECK_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, operation+": data violates check constraint")

	case "42P01": // UNDEFINED_TABLE
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: table not found (run 'poddigest migrate up')")

	case "42703": // UNDEFINED_COLUMN
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: column not found")

	case "08000", "08003", "08006": // CONNECTION_EXCEPTION variants
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection error")

	case "53300": // TOO_MANY_CONNECTIONS
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection limit reached")

	default:
		message := operation + ": database error (PostgreSQL code: " + pgErr.Code + ")"
		return apperrors.Wrap(err, apperrors.CodeInternal, message)
	}
}

// handleForeignKeyViolation names the missing parent row
func handleForeignKeyViolation(pgErr *pgconn.PgError, operation string) *apperrors.AppError {
	constraintName := pgErr.ConstraintName

	switch {
	case strings.Contains(constraintName, "channel_id"):
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, operation+": referenced channel does not exist")

	case strings.Contains(constraintName, "video_id"):
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, operation+": referenced video does not exist")

	default:
		return apperrors.Wrap(pgErr, apperrors.CodeDependency, operation+": referenced resource does not exist")
	}
}

// resourceName derives the record kind from a constraint name such as "summaries_video_id_key"
func resourceName(constraintName string) string {
	switch {
	case strings.HasPrefix(constraintName, "channels"):
		return "channel"
	case strings.HasPrefix(constraintName, "videos"):
		return "video"
	case strings.HasPrefix(constraintName, "transcripts"):
		return "transcript"
	case strings.HasPrefix(constraintName, "summaries"):
		return "summary"
	case strings.HasPrefix(constraintName, "episode_flags"):
		return "episode flag"
	default:
		return "resource"
	}
}
