package workers

import (
	"log"
	"sync"
	"time"

	"github.com/dilip-codes/fingerauthbackend/media"
)

// ArchiveJob is one capture snapshot waiting to be written to the archive.
// Data is an immutable copy of the encoded capture bytes; the verdict that
// produced it has already been committed, so archiving is fire-and-forget.
type ArchiveJob struct {
	AssetType media.AssetType
	Date      string // YYYY-MM-DD partition the snapshot files under
	TakenAt   *int64 // EXIF capture time, overrides Date when present
	Data      []byte
}

// CaptureArchiver writes capture snapshots in the background so enrollment
// and authentication latency never waits on image encoding or disk.
type CaptureArchiver struct {
	JobQueue  chan ArchiveJob
	Processor *media.Processor
	MaxSize   int
	Wg        sync.WaitGroup
	StopChan  chan struct{}
}

func NewCaptureArchiver(processor *media.Processor, queueSize, numWorkers, maxSize int) *CaptureArchiver {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	ca := &CaptureArchiver{
		JobQueue:  make(chan ArchiveJob, queueSize),
		Processor: processor,
		MaxSize:   maxSize,
		StopChan:  make(chan struct{}),
	}

	ca.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go ca.worker(i)
	}
	log.Printf("started %d capture archive worker(s) with queue size %d", numWorkers, queueSize)

	return ca
}

// Enqueue schedules a snapshot for archiving. A full queue drops the job
// rather than blocking the authentication path.
func (ca *CaptureArchiver) Enqueue(job ArchiveJob) bool {
	select {
	case ca.JobQueue <- job:
		return true
	default:
		log.Printf("capture archiver queue full, dropping %s snapshot for %s", job.AssetType, job.Date)
		return false
	}
}

func (ca *CaptureArchiver) worker(id int) {
	defer ca.Wg.Done()
	log.Printf("capture archive worker %d started", id)
	for {
		select {
		case job, ok := <-ca.JobQueue:
			if !ok {
				log.Printf("capture archive worker %d stopping: job queue closed", id)
				return
			}
			ca.processJob(job)

		case <-ca.StopChan:
			log.Printf("capture archive worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (ca *CaptureArchiver) processJob(job ArchiveJob) {
	partition := job.Date
	if job.TakenAt != nil {
		partition = time.Unix(*job.TakenAt, 0).Format("2006-01-02")
	}

	if _, err := ca.Processor.ArchiveSnapshot(job.AssetType, partition, job.Data, ca.MaxSize); err != nil {
		// archive failure never affects the verdict or the ledger
		log.Printf("capture archiver: failed to archive %s snapshot for %s: %v", job.AssetType, partition, err)
	}
}

// Stop signals all workers to finish and waits for them.
func (ca *CaptureArchiver) Stop() {
	close(ca.StopChan)
	ca.Wg.Wait()
	log.Println("capture archiver stopped")
}
