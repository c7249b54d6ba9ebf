package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	sc "github.com/dmitrijs2005/garagekeeper/internal/server/config"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
	"github.com/dmitrijs2005/garagekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignExpiry bounds how long attachment URLs stay usable.
const PresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AttachmentURL pairs an attachment record with a presigned URL for it.
type AttachmentURL struct {
	Attachment *models.Attachment `json:"attachment"`
	URL        string             `json:"url"`
	ExpiresAt  time.Time          `json:"expiresAt"`
}

// AttachmentService stores work-order files in S3-compatible storage. The API
// never proxies file bytes; clients upload and download with presigned URLs.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	now         func() time.Time
	withTx      txRunner
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *AttachmentService {
	return &AttachmentService{
		db:          db,
		repomanager: m,
		config:      cfg,
		now:         time.Now,
		withTx:      dbTx(db),
	}
}

// StorageKey returns a fresh object key under the work order's prefix.
func StorageKey(workOrderID string) string {
	return fmt.Sprintf("workorders/%s/%s", workOrderID, uuid.New())
}

func (s *AttachmentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// Register records a new attachment on workOrderID and returns a presigned
// PUT URL the client uploads the file to.
func (s *AttachmentService) Register(ctx context.Context, workOrderID, fileName string) (*AttachmentURL, error) {
	fileName = path.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, common.NewValidationError("fileName", "fileName is required")
	}
	if !validID(workOrderID) {
		return nil, common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := StorageKey(workOrderID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return nil, err
	}

	// The work order is locked so it cannot be deleted before the record lands.
	var a *models.Attachment
	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.WorkOrders(tx).GetByIDForUpdate(ctx, workOrderID); err != nil {
			return err
		}
		created, err := s.repomanager.Attachments(tx).Create(ctx, &models.Attachment{
			ID:          uuid.NewString(),
			WorkOrderID: workOrderID,
			FileName:    fileName,
			StorageKey:  key,
		})
		if err != nil {
			return err
		}
		a = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &AttachmentURL{Attachment: a, URL: req.URL, ExpiresAt: s.now().Add(PresignExpiry)}, nil
}

// Download returns a presigned GET URL for an existing attachment.
func (s *AttachmentService) Download(ctx context.Context, workOrderID, attachmentID string) (*AttachmentURL, error) {
	if !validID(workOrderID) || !validID(attachmentID) {
		return nil, common.ErrorNotFound
	}
	a, err := s.repomanager.Attachments(s.db).Get(ctx, workOrderID, attachmentID)
	if err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &a.StorageKey,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return nil, err
	}

	return &AttachmentURL{Attachment: a, URL: req.URL, ExpiresAt: s.now().Add(PresignExpiry)}, nil
}

func (s *AttachmentService) List(ctx context.Context, workOrderID string) ([]*models.Attachment, error) {
	if !validID(workOrderID) {
		return nil, common.ErrorNotFound
	}
	if _, err := s.repomanager.WorkOrders(s.db).GetByID(ctx, workOrderID); err != nil {
		return nil, err
	}
	return s.repomanager.Attachments(s.db).ListByWorkOrder(ctx, workOrderID)
}
