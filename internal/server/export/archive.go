package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/premiumkeeper/internal/server/config"
)

// LinkValidity is how long an archived export stays downloadable.
const LinkValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Archiver uploads export workbooks to an S3-compatible bucket.
type Archiver struct {
	putter    objectPutter
	presigner getPresigner
	bucket    string
	now       func() time.Time
}

// NewArchiver builds an S3 client from cfg. Path-style addressing keeps
// MinIO endpoints working.
func NewArchiver(ctx context.Context, cfg *sc.Config) (*Archiver, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &Archiver{
		putter:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.S3Bucket,
		now:       time.Now,
	}, nil
}

// Archive stores the workbook under exports/<date>/ and returns the key and
// a presigned GET URL valid for LinkValidity.
func (a *Archiver) Archive(ctx context.Context, workbook []byte) (string, string, error) {
	ts := a.now().UTC()
	key := fmt.Sprintf("exports/%s/%s-%s", ts.Format("2006/01/02"), ts.Format("150405"), FileName)

	_, err := a.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(workbook),
		ContentLength: aws.Int64(int64(len(workbook))),
		ContentType:   aws.String(MediaType),
	})
	if err != nil {
		return "", "", fmt.Errorf("upload export: %w", err)
	}

	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(a.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(`attachment; filename="` + FileName + `"`),
	}, s3.WithPresignExpires(LinkValidity))
	if err != nil {
		return "", "", fmt.Errorf("presign export: %w", err)
	}

	return key, req.URL, nil
}
